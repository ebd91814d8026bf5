package stacks

import (
	"fmt"
	"path/filepath"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/env"
)

func init() {
	register(&Stack{
		Name:    "koishi",
		Summary: "Koishi chatbot framework with the web console",
		DirName: "koishi",
		Fields: []collect.Field{
			{
				Key:         "HTTP_PORT",
				Title:       "Console Port",
				Description: "Host port for the Koishi web console",
				Default:     "5140",
				Validate:    collect.Port,
			},
			{
				Key:         "TZ",
				Title:       "Timezone",
				Description: "Container timezone for logs and schedules",
				Default:     "Asia/Shanghai",
				Options: []collect.Option{
					{Value: "Asia/Shanghai", Label: "Asia/Shanghai"},
					{Value: "UTC", Label: "UTC"},
					{Value: "Europe/Berlin", Label: "Europe/Berlin"},
					{Value: "America/New_York", Label: "America/New_York"},
				},
			},
		},
		Ports: []Port{
			{Number: "5140", Purpose: "Koishi web console", Key: "HTTP_PORT"},
		},
		Render:    renderKoishi,
		AccessURL: func(vals env.Vars) string { return fmt.Sprintf("http://localhost:%s", vals["HTTP_PORT"]) },
	})
}

func renderKoishi(dir string, vals env.Vars) error {
	if err := renderComposeFile(dir, "koishi.yml.tmpl", vals); err != nil {
		return err
	}
	return env.WriteEnvFile(filepath.Join(dir, ".env"), env.Vars{
		"HTTP_PORT": vals["HTTP_PORT"],
		"TZ":        vals["TZ"],
	})
}
