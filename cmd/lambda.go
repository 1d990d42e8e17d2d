package cmd

import (
	"FamilyTime/config"
	"FamilyTime/functions"
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda handler behind API Gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := newBackend(context.Background(), cfg, nil)
		if err != nil {
			return err
		}
		defer b.Close()

		handler := &functions.Handler{
			TimeRequests: b.timeRequests,
			Awards:       b.awards,
			Voice:        b.voice,
		}
		switch cfg.AuthMode {
		case config.AuthModeFirebase:
			handler.Authenticate = functions.FirebaseAuthenticator(b.firebase.Auth)
		default:
			handler.Authenticate = functions.JWTAuthenticator([]byte(cfg.JWTSecret))
		}

		lambda.Start(handler.Handle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
