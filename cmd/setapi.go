// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/bonial-oss/cve-prioritizer/internal/credentials"
)

// prompter asks the user for the service and the key.
type prompter interface {
	Select(message string, options []string) (string, error)
	Secret(message string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{Message: message, Options: options}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

func (surveyPrompter) Secret(message string) (string, error) {
	var secret string
	prompt := &survey.Password{Message: message}
	if err := survey.AskOne(prompt, &secret, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return secret, nil
}

func newSetAPICommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "set-api",
		Short: "Save a NIST NVD or VulnCheck API key to the dotenv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setAPI(cmd.OutOrStdout(), envFile, surveyPrompter{})
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", credentials.DefaultFile, "Dotenv file to update")
	return cmd
}

func setAPI(w io.Writer, envFile string, p prompter) error {
	service, err := p.Select("Please choose a service to set the API key", credentials.Services)
	if err != nil {
		return promptError(err)
	}
	key, err := p.Secret(fmt.Sprintf("Enter the API key for %s", service))
	if err != nil {
		return promptError(err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return usageError("API key must not be empty")
	}

	name, err := credentials.VarFor(service)
	if err != nil {
		return usageError("%v", err)
	}
	if err := credentials.Save(envFile, name, key); err != nil {
		return err
	}

	fmt.Fprintf(w, "API key for %s updated successfully.\n", service)
	return nil
}

func promptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return &ExitError{Code: 1, Message: "cancelled"}
	}
	return fmt.Errorf("prompting: %w", err)
}
