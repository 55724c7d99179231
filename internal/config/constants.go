package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CLICredentials are the API URL and token written by the breeze CLI login.
type CLICredentials struct {
	APIURL string
	Token  string
}

var (
	credentialsURLRe   = regexp.MustCompile(`(?m)^\s*api_url\s*=\s*"?([^"\s]+)"?\s*$`)
	credentialsTokenRe = regexp.MustCompile(`(?m)^\s*token\s*=\s*"?([^"\s]+)"?\s*$`)
)

func getCredentialsFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "breeze", "credentials")
}

// LoadCLICredentials reads the breeze CLI credentials file, returning nil when
// it is missing or incomplete.
func LoadCLICredentials() *CLICredentials {
	path := getCredentialsFilePath()
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	return parseCredentials(string(content))
}

func parseCredentials(content string) *CLICredentials {
	creds := &CLICredentials{}

	// api_url = "https://breeze.example.com/api/v1"
	if match := credentialsURLRe.FindStringSubmatch(content); len(match) > 1 {
		creds.APIURL = strings.TrimRight(match[1], "/")
	}

	// token = "brz_..."
	if match := credentialsTokenRe.FindStringSubmatch(content); len(match) > 1 {
		creds.Token = match[1]
	}

	if creds.APIURL == "" || creds.Token == "" {
		return nil
	}

	return creds
}
