package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Scraper  Scraper  `koanf:"scraper"`
	Google   Google   `koanf:"google"`
	Sync     Sync     `koanf:"sync"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// MaxRetries and RetryWait bound the fixed-interval retry loop used
	// when a connection scope is acquired.
	MaxRetries int           `koanf:"maxretries"`
	RetryWait  time.Duration `koanf:"retrywait"`
}

type Scraper struct {
	URL       string        `koanf:"url"`
	UserAgent string        `koanf:"useragent"`
	Timeout   time.Duration `koanf:"timeout"`
}

type Google struct {
	ClientId     string        `koanf:"clientid"`
	ClientSecret string        `koanf:"clientsecret"`
	CalendarId   string        `koanf:"calendarid"`
	TokenFile    string        `koanf:"tokenfile"`
	Timeout      time.Duration `koanf:"timeout"`
}

type Sync struct {
	// MinLevel is the minimum importance level an event needs to be
	// pushed to the external calendar. Events matching a high-value
	// indicator name are eligible regardless of level.
	MinLevel int `koanf:"minlevel"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Addr: ":8181",
		},
		Database: Database{
			Host:       "localhost",
			Port:       5432,
			User:       "ecocal",
			Pass:       "",
			Name:       "ecocal",
			Schema:     "public",
			MaxRetries: 5,
			RetryWait:  2 * time.Second,
		},
		Scraper: Scraper{
			URL:       "https://tradingeconomics.com/calendar",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		Google: Google{
			CalendarId: "primary",
			Timeout:    30 * time.Second,
		},
		Sync: Sync{
			MinLevel: 3,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "ECOCAL_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ECOCAL_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
