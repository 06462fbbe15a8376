package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const toastCookie = "toast"

// Toast kinds, mapped to CSS classes by the layout.
const (
	ToastSuccess = "success"
	ToastInfo    = "info"
	ToastDanger  = "danger"
)

// Toast is a one-shot notification shown on the next rendered page.
type Toast struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SetToast stores t for the next request, typically right before a redirect.
func SetToast(w http.ResponseWriter, t Toast) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopToast returns the pending toast, if any, and clears it. It must run
// before the response headers are written.
func PopToast(w http.ResponseWriter, r *http.Request) *Toast {
	c, err := r.Cookie(toastCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var t Toast
	if err := json.Unmarshal(b, &t); err != nil || t.Message == "" {
		return nil
	}
	switch t.Type {
	case ToastSuccess, ToastInfo, ToastDanger:
	default:
		t.Type = ToastInfo
	}
	return &t
}
