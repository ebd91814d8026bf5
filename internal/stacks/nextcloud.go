package stacks

import (
	"fmt"
	"path/filepath"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/env"
)

func init() {
	register(&Stack{
		Name:    "nextcloud",
		Summary: "Nextcloud personal cloud with a MariaDB backend",
		DirName: "nextcloud",
		Fields: []collect.Field{
			{
				Key:         "ADMIN_USER",
				Title:       "Admin Username",
				Description: "Initial Nextcloud administrator account",
				Default:     "admin",
				Validate:    collect.NonEmpty,
			},
			{
				Key:         "ADMIN_PASSWORD",
				Title:       "Admin Password",
				Description: "Password for the administrator account",
				Secret:      true,
				Validate:    collect.MinLength(8),
			},
			{
				Key:         "DOMAIN",
				Title:       "Domain",
				Description: "Trusted domain Nextcloud will be reached at",
				Placeholder: "cloud.example.com",
				Validate:    collect.Domain,
			},
			{
				Key:         "HTTP_PORT",
				Title:       "HTTP Port",
				Description: "Host port for the Nextcloud web interface",
				Default:     "8080",
				Validate:    collect.Port,
			},
		},
		Ports: []Port{
			{Number: "8080", Purpose: "Nextcloud web interface", Key: "HTTP_PORT"},
		},
		Render:    renderNextcloud,
		AccessURL: func(vals env.Vars) string { return fmt.Sprintf("http://%s:%s", vals["DOMAIN"], vals["HTTP_PORT"]) },
	})
}

func renderNextcloud(dir string, vals env.Vars) error {
	if err := generatedSecret(vals, "MYSQL_PASSWORD"); err != nil {
		return err
	}
	if err := generatedSecret(vals, "MYSQL_ROOT_PASSWORD"); err != nil {
		return err
	}
	if err := renderComposeFile(dir, "nextcloud.yml.tmpl", vals); err != nil {
		return err
	}

	return env.WriteEnvFile(filepath.Join(dir, ".env"), env.Vars{
		"NEXTCLOUD_ADMIN_USER":      vals["ADMIN_USER"],
		"NEXTCLOUD_ADMIN_PASSWORD":  vals["ADMIN_PASSWORD"],
		"NEXTCLOUD_TRUSTED_DOMAINS": vals["DOMAIN"],
		"MYSQL_HOST":                "db",
		"MYSQL_DATABASE":            "nextcloud",
		"MYSQL_USER":                "nextcloud",
		"MYSQL_PASSWORD":            vals["MYSQL_PASSWORD"],
		"MYSQL_ROOT_PASSWORD":       vals["MYSQL_ROOT_PASSWORD"],
		"HTTP_PORT":                 vals["HTTP_PORT"],
	})
}
