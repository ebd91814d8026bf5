package stacks

import (
	"fmt"
	"strings"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/env"
)

func init() {
	register(&Stack{
		Name:    "gemini-balance",
		Summary: "Gemini API key pool with load balancing and an OpenAI-compatible endpoint",
		DirName: "gemini-balance",
		Fields: []collect.Field{
			{
				Key:         "API_KEYS",
				Title:       "Gemini API Keys",
				Description: "Comma-separated list of Gemini API keys to balance across",
				Placeholder: "AIzaSy...,AIzaSy...",
				Validate:    collect.KeyList,
			},
			{
				Key:         "ACCESS_TOKEN",
				Title:       "Access Token",
				Description: "Token clients must present to use the proxy",
				Secret:      true,
				Validate:    collect.MinLength(8),
			},
			{
				Key:         "HTTP_PORT",
				Title:       "HTTP Port",
				Description: "Host port for the proxy endpoint",
				Default:     "8000",
				Validate:    collect.Port,
			},
		},
		Ports: []Port{
			{Number: "8000", Purpose: "OpenAI-compatible API endpoint", Key: "HTTP_PORT"},
		},
		Render:    renderGemini,
		AccessURL: func(vals env.Vars) string { return fmt.Sprintf("http://localhost:%s", vals["HTTP_PORT"]) },
	})
}

// renderGemini writes the compose file and the .env consumed by the
// gemini-balance and mysql containers.
func renderGemini(dir string, vals env.Vars) error {
	if err := generatedSecret(vals, "MYSQL_ROOT_PASSWORD"); err != nil {
		return err
	}
	if err := renderComposeFile(dir, "gemini-balance.yml.tmpl", vals); err != nil {
		return err
	}

	return env.WriteEnvFile(dir+"/.env", env.Vars{
		"API_KEYS":            jsonList(vals["API_KEYS"]),
		"ALLOWED_TOKENS":      jsonList(vals["ACCESS_TOKEN"]),
		"AUTH_TOKEN":          vals["ACCESS_TOKEN"],
		"DATABASE_TYPE":       "mysql",
		"MYSQL_HOST":          "mysql",
		"MYSQL_PORT":          "3306",
		"MYSQL_USER":          "root",
		"MYSQL_ROOT_PASSWORD": vals["MYSQL_ROOT_PASSWORD"],
		"MYSQL_DATABASE":      "gemini",
		"HTTP_PORT":           vals["HTTP_PORT"],
	})
}

// jsonList turns a comma-separated value into the JSON string array the
// gemini-balance image expects in its environment.
func jsonList(csv string) string {
	var quoted []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", part))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
