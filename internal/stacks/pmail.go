package stacks

import (
	"fmt"
	"path/filepath"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/env"
)

func init() {
	register(&Stack{
		Name:    "pmail",
		Summary: "PMail single-domain mail server with web mail and admin UI",
		DirName: "pmail",
		Fields: []collect.Field{
			{
				Key:         "DOMAIN",
				Title:       "Mail Domain",
				Description: "Domain the server receives mail for",
				Placeholder: "example.com",
				Validate:    collect.Domain,
			},
			{
				Key:         "PUBLIC_IP",
				Title:       "Public IP",
				Description: "Public address for DNS guidance (auto-detected when possible)",
				Validate:    collect.NonEmpty,
			},
			{
				Key:         "WEB_PORT",
				Title:       "Web Port",
				Description: "Host port for the setup and web mail interface",
				Default:     "80",
				Validate:    collect.Port,
			},
		},
		Ports: []Port{
			{Number: "25", Purpose: "SMTP"},
			{Number: "80", Purpose: "Setup wizard and web mail", Key: "WEB_PORT"},
			{Number: "443", Purpose: "HTTPS web mail"},
		},
		WantsPublicIP: true,
		Render:        renderPMail,
		AccessURL: func(vals env.Vars) string {
			return fmt.Sprintf("http://%s:%s", vals["PUBLIC_IP"], vals["WEB_PORT"])
		},
	})
}

func renderPMail(dir string, vals env.Vars) error {
	if err := renderComposeFile(dir, "pmail.yml.tmpl", vals); err != nil {
		return err
	}
	return env.WriteEnvFile(filepath.Join(dir, ".env"), env.Vars{
		"DOMAIN":    vals["DOMAIN"],
		"PUBLIC_IP": vals["PUBLIC_IP"],
		"WEB_PORT":  vals["WEB_PORT"],
	})
}
