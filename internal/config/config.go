package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env string `yaml:"env" env-default:"local"`
	Bot struct {
		Name          string `yaml:"name" env-default:"Genie"`
		ID            string `yaml:"id" env-default:"genie"`
		DefaultDialog string `yaml:"default_dialog" env-default:"urlcheck"`
	} `yaml:"bot"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"GenieBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:"genie"`
	} `yaml:"mongo"`
	Reputation struct {
		BaseURL          string `yaml:"base_url" env-default:"https://urlite.ff.avast.com/v1/urlinfo"`
		TimeoutSec       int    `yaml:"timeout_sec" env-default:"10"`
		FailureThreshold uint32 `yaml:"failure_threshold" env-default:"5"`
		ResetTimeoutSec  int    `yaml:"reset_timeout_sec" env-default:"60"`
	} `yaml:"reputation"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"3978"`
		ApiKey string `yaml:"api_key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
