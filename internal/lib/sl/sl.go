package sl

import "log/slog"

// Err returns an attribute carrying the error text under the "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Module tags records with the component that produced them.
func Module(name string) slog.Attr {
	return slog.String("mod", name)
}

// Secret logs only a short prefix of a sensitive value.
func Secret(key, value string) slog.Attr {
	if len(value) <= 5 {
		return slog.String(key, "*****")
	}
	return slog.String(key, value[:5]+"*****")
}
