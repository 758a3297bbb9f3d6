package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// PathID reads a positive integer path value.
func PathID(r *http.Request, key string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(key))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

// WantsJSON is true for scripted callers that asked for JSON instead of the
// page redirect.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// RedirectHome sends a browser back to the page after a form post.
func RedirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
