package stacks

import (
	"path/filepath"
	"strconv"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/env"
	"github.com/selfhost-kit/stackctl/internal/render"
)

func init() {
	register(&Stack{
		Name:    "maibot",
		Summary: "MaiBot QQ chatbot with a NapCat protocol sidecar",
		DirName: "maibot",
		Fields: []collect.Field{
			{
				Key:         "QQ_NUMBER",
				Title:       "Bot QQ Number",
				Description: "QQ account the bot logs in with",
				Placeholder: "123456789",
				Validate:    collect.NumericID,
			},
			{
				Key:         "NICKNAME",
				Title:       "Bot Nickname",
				Description: "Display name the bot responds to",
				Default:     "麦麦",
				Validate:    collect.NonEmpty,
			},
			{
				Key:         "MODEL_API_KEY",
				Title:       "Model API Key",
				Description: "API key for the chat model backend",
				Secret:      true,
				Validate:    collect.NonEmpty,
			},
			{
				Key:         "NAPCAT_PORT",
				Title:       "NapCat WebUI Port",
				Description: "Host port for the NapCat login interface",
				Default:     "6099",
				Validate:    collect.Port,
			},
		},
		Ports: []Port{
			{Number: "6099", Purpose: "NapCat WebUI (QR-code login)", Key: "NAPCAT_PORT"},
		},
		Render: renderMaiBot,
		AccessURL: func(vals env.Vars) string {
			return "http://localhost:" + vals["NAPCAT_PORT"] + "/webui"
		},
	})
}

// maibotConfig is the subset of MaiBot's config.toml the installer fills in.
type maibotConfig struct {
	Bot struct {
		QQAccount int64  `toml:"qq_account"`
		Nickname  string `toml:"nickname"`
	} `toml:"bot"`
	Model struct {
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
	} `toml:"model"`
	Napcat struct {
		WebsocketURL string `toml:"websocket_url"`
	} `toml:"napcat"`
}

func renderMaiBot(dir string, vals env.Vars) error {
	if err := renderComposeFile(dir, "maibot.yml.tmpl", vals); err != nil {
		return err
	}

	qq, err := strconv.ParseInt(vals["QQ_NUMBER"], 10, 64)
	if err != nil {
		return err
	}

	var cfg maibotConfig
	cfg.Bot.QQAccount = qq
	cfg.Bot.Nickname = vals["NICKNAME"]
	cfg.Model.APIKey = vals["MODEL_API_KEY"]
	cfg.Model.BaseURL = "https://api.siliconflow.cn/v1"
	cfg.Napcat.WebsocketURL = "ws://napcat:8095"

	if _, err := render.WriteTOML(dir, "config.toml", cfg); err != nil {
		return err
	}

	return env.WriteEnvFile(filepath.Join(dir, ".env"), env.Vars{
		"QQ_NUMBER":   vals["QQ_NUMBER"],
		"NAPCAT_PORT": vals["NAPCAT_PORT"],
	})
}
