package dialog

import (
	"context"
	"fmt"
	"strings"
)

// NumberRange accepts numbers strictly between min and max.
func NumberRange(min, max float64, retry string) Validator {
	if retry == "" {
		retry = fmt.Sprintf("The value entered must be greater than %g and less than %g.", min, max)
	}
	return func(_ context.Context, pc *PromptContext) ValidationResult {
		if !pc.Recognized.Succeeded {
			return ValidationResult{RetryMessage: retry}
		}
		n, ok := pc.Recognized.Value.(float64)
		if !ok || n <= min || n >= max {
			return ValidationResult{RetryMessage: retry}
		}
		return ValidationResult{Accepted: true, Value: n}
	}
}

// ContentTypes keeps only attachments of the allowed content types. When the
// message carries no attachment at all the input is accepted with a nil value
// and the notice is sent instead.
func ContentTypes(notice string, allowed ...string) Validator {
	allow := make(map[string]bool, len(allowed))
	for _, ct := range allowed {
		allow[strings.ToLower(ct)] = true
	}
	return func(_ context.Context, pc *PromptContext) ValidationResult {
		if !pc.Recognized.Succeeded {
			return ValidationResult{Accepted: true, Notice: notice}
		}
		var valid []Attachment
		for _, a := range AsAttachments(pc.Recognized.Value) {
			if allow[strings.ToLower(a.ContentType)] {
				valid = append(valid, a)
			}
		}
		if len(valid) == 0 {
			return ValidationResult{}
		}
		return ValidationResult{Accepted: true, Value: valid}
	}
}
