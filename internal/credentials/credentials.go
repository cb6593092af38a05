// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package credentials loads and stores upstream API keys in a dotenv file.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultFile is the dotenv file in the working directory.
const DefaultFile = ".env"

// Environment variables holding the API keys.
const (
	NISTKeyVar      = "NIST_API"
	VulnCheckKeyVar = "VULNCHECK_API"
)

// Service names offered by set-api.
const (
	ServiceNVD       = "nist_nvd"
	ServiceVulnCheck = "vulncheck"
)

// Services lists the services a key can be stored for.
var Services = []string{ServiceNVD, ServiceVulnCheck}

// VarFor maps a service name to its environment variable.
func VarFor(service string) (string, error) {
	switch service {
	case ServiceNVD:
		return NISTKeyVar, nil
	case ServiceVulnCheck:
		return VulnCheckKeyVar, nil
	default:
		return "", fmt.Errorf("unknown service %q", service)
	}
}

// Load exports the variables of path into the process environment.
// Variables already set are left alone and a missing file is not an error.
func Load(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Keys holds the keys found in the environment.
type Keys struct {
	NIST      string
	VulnCheck string
}

// FromEnv reads the API keys from the environment.
func FromEnv() Keys {
	return Keys{
		NIST:      os.Getenv(NISTKeyVar),
		VulnCheck: os.Getenv(VulnCheckKeyVar),
	}
}

// Save sets key to value in path, keeping every other entry. The file is
// created if needed and left readable by the owner only.
func Save(path, key, value string) error {
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		env, err = godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restricting %s: %w", path, err)
	}
	return nil
}
