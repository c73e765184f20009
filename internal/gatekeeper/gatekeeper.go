// Package gatekeeper implements the network-level access gate. It runs
// before authentication on every API request: the client address is resolved,
// checked against the allowlist, and the request is either passed through or
// diverted to the self-service access-request surface. The gate never
// returns an HTTP error status; its worst outcome is the divert payload.
package gatekeeper

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/clientip"
	"github.com/reelhaven/reelhaven/internal/logger"
	"github.com/reelhaven/reelhaven/internal/metrics"
	"github.com/reelhaven/reelhaven/internal/services"
)

// ClientIPKey is the Gin context key under which the resolved client address
// is stored for downstream handlers.
const ClientIPKey = "clientIP"

// The two escape operations: submitting an access request (and polling its
// surface) and fetching thumbnails, which the blocked page embeds.
func isEscapeRoute(method, path string) bool {
	switch method {
	case http.MethodPost:
		return path == "/api/v1/access-requests"
	case http.MethodGet:
		return path == "/api/v1/access-requests/status" ||
			strings.HasPrefix(path, "/api/v1/thumbnails/")
	}
	return false
}

// Gatekeeper evaluates the allowlist for every inbound API request.
type Gatekeeper struct {
	allowlist *services.AllowlistService
	requests  *services.AccessRequestService
	audit     *services.AuditService
}

// New creates a Gatekeeper over the shared database handle.
func New(db *gorm.DB) *Gatekeeper {
	return &Gatekeeper{
		allowlist: services.NewAllowlistService(db),
		requests:  services.NewAccessRequestService(db),
		audit:     services.NewAuditService(db),
	}
}

// Middleware returns the gate as a Gin handler. Register it on the API group
// before the auth middleware; the ordering is what guarantees the network
// check precedes authentication.
func (g *Gatekeeper) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientip.Resolve(c.Request)
		c.Set(ClientIPKey, ip)

		switch g.evaluate(c, ip) {
		case decisionAllowed:
			c.Next()
		case decisionDiverted:
			g.divert(c, ip)
		}
	}
}

type decision int

const (
	decisionAllowed decision = iota
	decisionDiverted
)

// evaluate classifies the request. This is the single place in the system
// that swallows errors: any failure inside the gate, panic included, turns
// into an allow. A broken gate locking out every client at once is worse
// than briefly serving unlisted addresses, so the gate fails open.
// Do not harden this to fail closed without flagging the behavior change.
func (g *Gatekeeper) evaluate(c *gin.Context, ip string) (d decision) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{"ip": ip}).
				Errorf("access gate panic, failing open: %v", r)
			metrics.IncGateFailOpen()
			d = decisionAllowed
		}
	}()

	metrics.IncGateEvaluated()

	active, err := g.allowlist.ActiveAddresses()
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).
			WithError(err).Error("access gate allowlist lookup failed, failing open")
		metrics.IncGateFailOpen()
		return decisionAllowed
	}

	if active[ip] {
		metrics.IncGateAllowed()
		return decisionAllowed
	}

	if isEscapeRoute(c.Request.Method, c.Request.URL.Path) {
		metrics.IncGateAllowed()
		return decisionAllowed
	}

	return decisionDiverted
}

// divert responds with the access-request surface payload instead of the
// original handler's output. Deliberately a 200: being off the allowlist is
// not an HTTP error, and the frontend renders the surface from the payload.
func (g *Gatekeeper) divert(c *gin.Context, ip string) {
	metrics.IncGateDiverted()

	// Best-effort audit; a failed write must not change the outcome.
	g.audit.LogAccess(nil, ip, "BLOCKED access to "+c.Request.URL.Path, false)

	c.AbortWithStatusJSON(http.StatusOK, gin.H{
		"diverted":            true,
		"ip_address":          ip,
		"has_pending_request": g.requests.HasPending(ip),
		"message":             "This address is not on the access list. Submit an access request to ask for entry.",
	})
}
