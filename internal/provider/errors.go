package provider

import "fmt"

// FCM error codes that indicate the token itself is dead and the delivery
// can never succeed for it. Everything else is treated as a transient
// provider-side condition.
var permanentFCMErrors = map[string]struct{}{
	"MissingRegistration":  {},
	"InvalidRegistration":  {},
	"NotRegistered":        {},
	"MismatchSenderId":     {},
	"InvalidPackageName":   {},
	"MessageTooBig":        {},
	"InvalidDataKey":       {},
	"InvalidTtl":           {},
	"InvalidParameters":    {},
}

// IsPermanentFCMError reports whether an FCM error code means the recipient
// token is unusable. The pipeline never retries either way; the distinction
// only shapes the recorded error message.
func IsPermanentFCMError(code string) bool {
	_, ok := permanentFCMErrors[code]
	return ok
}

func fcmErrorMessage(code string) string {
	if IsPermanentFCMError(code) {
		return fmt.Sprintf("fcm rejected token: %s", code)
	}
	return fmt.Sprintf("fcm delivery failed: %s", code)
}
