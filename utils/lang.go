package utils

import (
	"embed"
	"path"
	"path/filepath"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

//go:embed locales/*.yaml
var locales embed.FS

var (
	bundle     *i18n.Bundle
	bundleOnce sync.Once
)

// InitI18NBundle loads the built-in messages and every yaml message file
// found in dir. An empty dir loads the built-in messages only.
func InitI18NBundle(dir string) {
	bundleOnce.Do(func() {
		bundle = newBundle(dir)
	})
}

func newBundle(dir string) *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		log.WithField("prefix", "i18n").Panic(err)
	}
	for _, e := range entries {
		data, err := locales.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			log.WithField("prefix", "i18n").Panic(err)
		}
		b.MustParseMessageFileBytes(data, e.Name())
	}

	if dir == "" {
		return b
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		log.WithField("prefix", "i18n").Error(err)
		return b
	}
	for _, f := range files {
		if _, err := b.LoadMessageFile(f); err != nil {
			log.WithField("prefix", "i18n").WithError(err).Warnf("skip message file %s", f)
		}
	}
	return b
}

func NewLocalizer(lang string) *i18n.Localizer {
	InitI18NBundle("")
	return i18n.NewLocalizer(bundle, lang)
}

// Localize returns the message of the given id. The id itself is returned
// when the message does not exist.
func Localize(lang, messageID string, data map[string]interface{}) string {
	msg, err := NewLocalizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
