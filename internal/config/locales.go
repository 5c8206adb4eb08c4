package config

import "log/slog"

const (
	LangEN = "en"
	LangJA = "ja"
)

func GetLocaleConfig(lang string) string {
	switch lang {
	case LangEN:
		return LangEN
	case LangJA:
		return LangJA
	default:
		slog.Warn("language not supported, falling back to Japanese", "language", lang)
		return LangJA
	}
}
