package cli

import (
	"fmt"

	"github.com/mchmarny/modelscore/pkg/auth"
	urfave "github.com/urfave/cli/v2"
)

const (
	clientID     = "3f1c7a9d24b8e05612fd"
	deviceScopes = "repo"
)

var (
	authCmd = &urfave.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Authenticate to GitHub to obtain an access token",
		Action:          cmdInitAuthFlow,
	}
)

func cmdInitAuthFlow(c *urfave.Context) error {
	cfg := getConfig(c)

	code, err := auth.GetDeviceCode(clientID, deviceScopes)
	if err != nil {
		return fmt.Errorf("getting device code: %w", err)
	}

	fmt.Printf("1). Copy this code: %s\n", code.UserCode)
	fmt.Printf("2). Navigate to this URL in your browser to authenticate: %s\n", code.VerificationURL)
	fmt.Print("3). Hit enter to complete the process:\n")
	fmt.Print(">")

	if _, err = fmt.Scanln(); err != nil {
		return fmt.Errorf("reading user input: %w", err)
	}

	token, err := auth.GetToken(clientID, code)
	if err != nil {
		return fmt.Errorf("getting token: %w", err)
	}

	if err = auth.SaveToken(cfg.Home, token.AccessToken); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved")
	return nil
}
