package services

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	IntentAddChild    = "add_child"
	IntentAssignChore = "assign_chore"
	IntentShowUsage   = "show_usage"
	IntentGrantBonus  = "grant_bonus"
)

// VoiceCommand результат NLU: интент и сущности (строки или числа приводятся к строке)
type VoiceCommand struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// Entity первое непустое значение среди ключей-синонимов
func (c VoiceCommand) Entity(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(c.Entities[key]); v != "" {
			return v
		}
	}
	return ""
}

func (c VoiceCommand) childName() string {
	return c.Entity("child", "childName", "child_name", "name")
}

// minutes принимает только целые значения ("30" или "30.0"); дробные,
// NaN и все, что не влезает в int32, считаются нераспознанными
func (c VoiceCommand) minutes() (int, bool) {
	raw := c.Entity("minutes", "duration")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseVoiceCommand разбирает {"intent": "...", "entities": {...}}
func ParseVoiceCommand(raw []byte) (VoiceCommand, error) {
	if !gjson.ValidBytes(raw) {
		return VoiceCommand{}, newLedgerError(CodeInvalidArgument, "Voice payload must be JSON")
	}
	cmd := VoiceCommand{
		Intent:   strings.TrimSpace(gjson.GetBytes(raw, "intent").String()),
		Entities: make(map[string]string),
	}
	gjson.GetBytes(raw, "entities").ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String, gjson.Number, gjson.True, gjson.False:
			cmd.Entities[key.String()] = value.String()
		}
		return true
	})
	if cmd.Intent == "" {
		return VoiceCommand{}, newLedgerError(CodeInvalidArgument, "intent is required")
	}
	return cmd, nil
}

type VoiceResult struct {
	OK   bool      `json:"ok"`
	Say  string    `json:"say"`
	Code ErrorCode `json:"code,omitempty"`
}

// VoiceDispatchService маршрутизирует голосовые интенты в операции леджера
// и всегда возвращает фразу для озвучивания
type VoiceDispatchService struct {
	ChildRepo repositories.ChildRepository
	Pairing   *PairingService
	Chores    *ChoreService
	Usage     *UsageService
	Awards    *AwardService
}

func NewVoiceDispatchService(
	childRepo repositories.ChildRepository,
	pairing *PairingService,
	chores *ChoreService,
	usage *UsageService,
	awards *AwardService,
) *VoiceDispatchService {
	return &VoiceDispatchService{
		ChildRepo: childRepo,
		Pairing:   pairing,
		Chores:    chores,
		Usage:     usage,
		Awards:    awards,
	}
}

func isMutatingIntent(intent string) bool {
	switch intent {
	case IntentAddChild, IntentAssignChore, IntentGrantBonus:
		return true
	}
	return false
}

func (s *VoiceDispatchService) Dispatch(ctx context.Context, session *models.Session, cmd VoiceCommand) VoiceResult {
	if session == nil || session.UID == "" {
		return VoiceResult{Say: "Please sign in first.", Code: CodeUnauthenticated}
	}
	if isMutatingIntent(cmd.Intent) && !session.IsParent() {
		return VoiceResult{Say: "Sorry, only a parent can do that.", Code: CodePermissionDenied}
	}

	var (
		say string
		err error
	)
	switch cmd.Intent {
	case IntentAddChild:
		say, err = s.addChild(session, cmd)
	case IntentAssignChore:
		say, err = s.assignChore(ctx, session, cmd)
	case IntentShowUsage:
		say, err = s.showUsage(ctx, session, cmd)
	case IntentGrantBonus:
		say, err = s.grantBonus(ctx, session, cmd)
	default:
		return VoiceResult{
			Say:  "Sorry, I didn't catch that. You can ask me to show usage, grant bonus time, assign a chore or add a child.",
			Code: CodeInvalidArgument,
		}
	}
	if err != nil {
		config.Log.WithFields(logrus.Fields{
			"intent": cmd.Intent,
			"uid":    session.UID,
		}).Infof("[VOICE] Интент не выполнен: %v", err)
		return VoiceResult{Say: MessageOf(err), Code: CodeOf(err)}
	}
	return VoiceResult{OK: true, Say: say}
}

func (s *VoiceDispatchService) addChild(session *models.Session, cmd VoiceCommand) (string, error) {
	parent, err := s.Pairing.RefreshParentCode(session.UID)
	if err != nil {
		return "", err
	}
	spoken := strings.Join(strings.Split(parent.Code, ""), " ")
	if name := cmd.childName(); name != "" {
		return fmt.Sprintf("Ask %s to enter code %s on their device. It is valid for 24 hours.", name, spoken), nil
	}
	return fmt.Sprintf("Your pairing code is %s. It is valid for 24 hours.", spoken), nil
}

func (s *VoiceDispatchService) assignChore(ctx context.Context, session *models.Session, cmd VoiceCommand) (string, error) {
	child, err := s.findChild(session.UID, cmd.childName())
	if err != nil {
		return "", err
	}
	title := cmd.Entity("chore", "title", "task")
	if title == "" {
		return "", newLedgerError(CodeInvalidArgument, "Which chore should I assign?")
	}
	minutes, ok := s.minutesOrZero(cmd)
	if !ok {
		return "", newLedgerError(CodeInvalidArgument, "How many minutes is the chore worth?")
	}
	chore, err := s.Chores.AssignChore(ctx, session, AssignChoreInput{
		ChildID:      child.FirebaseUID,
		Title:        title,
		MinutesAward: minutes,
	})
	if err != nil {
		return "", err
	}
	if chore.MinutesAward > 0 {
		return fmt.Sprintf("Assigned %s to %s for %d minutes.", chore.Title, child.Name, chore.MinutesAward), nil
	}
	return fmt.Sprintf("Assigned %s to %s.", chore.Title, child.Name), nil
}

func (s *VoiceDispatchService) showUsage(ctx context.Context, session *models.Session, cmd VoiceCommand) (string, error) {
	var child models.Child
	if session.IsParent() {
		var err error
		child, err = s.findChild(session.UID, cmd.childName())
		if err != nil {
			return "", err
		}
	} else {
		child = models.Child{FirebaseUID: session.UID}
	}
	state, err := s.Usage.LockState(ctx, session, child.FirebaseUID, s.Usage.now())
	if err != nil {
		return "", err
	}
	subject := "You have"
	if session.IsParent() {
		subject = child.Name + " has"
	}
	return fmt.Sprintf("%s used %d of %d minutes today, %d minutes left.",
		subject, state.UsedMinutes, state.BudgetMinutes, state.RemainingMinutes), nil
}

func (s *VoiceDispatchService) grantBonus(ctx context.Context, session *models.Session, cmd VoiceCommand) (string, error) {
	child, err := s.findChild(session.UID, cmd.childName())
	if err != nil {
		return "", err
	}
	minutes, ok := cmd.minutes()
	if !ok || minutes <= 0 {
		return "", newLedgerError(CodeInvalidArgument, "How many minutes should I add?")
	}
	result, err := s.Awards.GrantBonusTime(ctx, session, GrantBonusInput{
		ChildID: child.FirebaseUID,
		Minutes: minutes,
		Reason:  cmd.Entity("reason"),
	})
	if err != nil {
		return "", err
	}
	if result.Capped {
		return fmt.Sprintf("%s's budget is capped at %d minutes today.", child.Name, result.NewBudgetMinutes), nil
	}
	return fmt.Sprintf("Added %d minutes for %s. Today's budget is now %d minutes.",
		minutes, child.Name, result.NewBudgetMinutes), nil
}

// minutesOrZero: без сущности минут награда 0, нераспознанное значение отклоняется
func (s *VoiceDispatchService) minutesOrZero(cmd VoiceCommand) (int, bool) {
	if cmd.Entity("minutes", "duration") == "" {
		return 0, true
	}
	minutes, ok := cmd.minutes()
	if !ok || minutes < 0 {
		return 0, false
	}
	return minutes, true
}

func (s *VoiceDispatchService) findChild(parentUID, name string) (models.Child, error) {
	if name == "" {
		return models.Child{}, newLedgerError(CodeInvalidArgument, "Which child do you mean?")
	}
	child, err := s.ChildRepo.FindByParentAndName(parentUID, name)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Child{}, newLedgerError(CodeNotFound, fmt.Sprintf("Could not find child %s", name))
	}
	if err != nil {
		return models.Child{}, internalError("Failed to look up child", err)
	}
	return child, nil
}
