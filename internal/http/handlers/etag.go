package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes the payload with a strong ETag and answers
// 304 when the client's If-None-Match already covers it. Used on the user
// list, which admin dashboards tend to poll.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)

	if err != nil {
		// fall back to a plain response; gin will surface the marshal error
		ctx.JSON(status, payload)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagMatches(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)

	if ifNoneMatch == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	want := stripWeakPrefix(current)

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if stripWeakPrefix(candidate) == want {
			return true
		}
	}

	return false
}

// RFC 9110 allows weak validators like W/"abc".
func stripWeakPrefix(tag string) string {
	tag = strings.TrimSpace(tag)

	if strings.HasPrefix(tag, "W/") {
		tag = strings.TrimSpace(strings.TrimPrefix(tag, "W/"))
	}

	return tag
}
