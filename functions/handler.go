// Package functions публикует операции леджера как AWS Lambda за API Gateway.
// Маршрут выбирается по суффиксу пути: /submitRequest, /approveRequest,
// /denyRequest, /grantBonusTime, /applyAward, /dispatch.
package functions

import (
	"FamilyTime/config"
	"FamilyTime/middlewares"
	"FamilyTime/models"
	"FamilyTime/services"
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
)

// Authenticator превращает заголовок Authorization в сессию
type Authenticator func(ctx context.Context, authorization string) (*models.Session, error)

func JWTAuthenticator(secret []byte) Authenticator {
	return func(_ context.Context, authorization string) (*models.Session, error) {
		token, ok := middlewares.BearerToken(authorization)
		if !ok {
			return nil, services.ErrUnauthenticated
		}
		return middlewares.ParseSessionToken(secret, token)
	}
}

func FirebaseAuthenticator(verifier middlewares.IDTokenVerifier) Authenticator {
	return func(ctx context.Context, authorization string) (*models.Session, error) {
		token, ok := middlewares.BearerToken(authorization)
		if !ok {
			return nil, services.ErrUnauthenticated
		}
		return middlewares.SessionFromIDToken(ctx, verifier, token)
	}
}

type Handler struct {
	TimeRequests *services.TimeRequestService
	Awards       *services.AwardService
	Voice        *services.VoiceDispatchService
	Authenticate Authenticator
}

// approveInput тело /approveRequest и /denyRequest. Решение задает путь,
// approved в теле допускается только если совпадает с ним.
type approveInput struct {
	RequestID string `json:"requestId"`
	Approved  *bool  `json:"approved"`
	Reason    string `json:"reason"`
}

func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod != "" && request.HTTPMethod != http.MethodPost {
		return errorResponse(&services.LedgerError{Code: services.CodeInvalidArgument, Message: "Only POST is supported"}), nil
	}
	session, err := h.Authenticate(ctx, header(request.Headers, "Authorization"))
	if err != nil {
		return jsonResponse(http.StatusUnauthorized, map[string]interface{}{
			"ok":    false,
			"code":  services.CodeUnauthenticated,
			"error": "Unauthorized",
		}), nil
	}

	body := []byte(request.Body)
	switch operation(request.Path) {
	case "submitRequest":
		var in services.SubmitRequestInput
		if err := json.Unmarshal(body, &in); err != nil {
			return invalidBody(), nil
		}
		result, err := h.TimeRequests.SubmitRequest(ctx, session, in)
		return respond(result, err), nil

	case "approveRequest", "denyRequest":
		var in approveInput
		if err := json.Unmarshal(body, &in); err != nil {
			return invalidBody(), nil
		}
		approved := operation(request.Path) == "approveRequest"
		if in.Approved != nil && *in.Approved != approved {
			return errorResponse(&services.LedgerError{Code: services.CodeInvalidArgument,
				Message: "approved contradicts /" + operation(request.Path)}), nil
		}
		result, err := h.TimeRequests.DecideRequest(ctx, session, services.DecideRequestInput{
			RequestID: in.RequestID,
			Approved:  approved,
			Reason:    in.Reason,
		})
		return respond(result, err), nil

	case "grantBonusTime":
		var in services.GrantBonusInput
		if err := json.Unmarshal(body, &in); err != nil {
			return invalidBody(), nil
		}
		result, err := h.Awards.GrantBonusTime(ctx, session, in)
		return respond(result, err), nil

	// внешний триггер проверки задач
	case "applyAward":
		if session.Role != models.RoleVerifier {
			return errorResponse(&services.LedgerError{Code: services.CodePermissionDenied, Message: "Only the verifier can apply awards"}), nil
		}
		var in struct {
			SubmissionID string `json:"submissionId"`
		}
		if err := json.Unmarshal(body, &in); err != nil {
			return invalidBody(), nil
		}
		result, err := h.Awards.ApplyAward(ctx, in.SubmissionID)
		return respond(result, err), nil

	case "dispatch":
		cmd, err := services.ParseVoiceCommand(body)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, services.VoiceResult{Say: "Sorry, I didn't catch that.", Code: services.CodeOf(err)}), nil
		}
		result := h.Voice.Dispatch(ctx, session, cmd)
		status := http.StatusOK
		if !result.OK {
			status = result.Code.HTTPStatus()
		}
		return jsonResponse(status, result), nil
	}

	return errorResponse(&services.LedgerError{Code: services.CodeNotFound, Message: "Unknown operation"}), nil
}

func operation(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// header ищет заголовок без учета регистра (API Gateway v2 приводит к нижнему)
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func respond(result interface{}, err error) events.APIGatewayProxyResponse {
	if err != nil {
		return errorResponse(err)
	}
	return jsonResponse(http.StatusOK, result)
}

func invalidBody() events.APIGatewayProxyResponse {
	return errorResponse(&services.LedgerError{Code: services.CodeInvalidArgument, Message: "Invalid request body"})
}

func errorResponse(err error) events.APIGatewayProxyResponse {
	code := services.CodeOf(err)
	if code == services.CodeInternal {
		config.Log.Errorf("[LAMBDA] %v", err)
	}
	return jsonResponse(code.HTTPStatus(), map[string]interface{}{
		"ok":    false,
		"code":  code,
		"error": services.MessageOf(err),
	})
}

func jsonResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: `{"ok":false,"code":"internal","error":"Error creating response"}`}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
