// Package ledger is the development backend the ATM client talks to.
// The real ledger service is external to this system; this one exists so
// the client, its gateway and its workflows can run and be tested end to
// end. Accounts live in memory, verification codes in Redis or memory,
// and verification emails go out through Mailgun when configured.
package ledger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/banclabs/cajero/pkg/helpers"
	"github.com/banclabs/cajero/pkg/mailer"
	"github.com/banclabs/cajero/pkg/response"
)

// CodeSender delivers a verification code to an address. Satisfied by
// mailer.Mailgun; a nil sender logs the code instead (dev mode).
type CodeSender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Server struct {
	store   *Store
	codes   CodeStore
	jwt     *helpers.JWTManager
	log     *logrus.Logger
	mail    CodeSender
	codeTTL time.Duration
	limit   gin.HandlerFunc
}

func NewServer(store *Store, codes CodeStore, jwt *helpers.JWTManager, log *logrus.Logger, mail CodeSender, codeTTL time.Duration) *Server {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &Server{store: store, codes: codes, jwt: jwt, log: log, mail: mail, codeTTL: codeTTL}
}

// EnableRateLimit throttles the credential endpoints (register, verify,
// resend, login) per client IP. Call before Router.
func (s *Server) EnableRateLimit(rdb *redis.Client, max int, window time.Duration) {
	s.limit = rateLimit(rdb, max, window)
}

// Router assembles the gin engine with the full wire contract.
func (s *Server) Router(corsOrigins []string, httpLog bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if httpLog {
		r.Use(gin.Logger())
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	guarded := auth.Group("")
	if s.limit != nil {
		guarded.Use(s.limit)
	}
	guarded.POST("/register", s.handleRegister)
	guarded.POST("/verify-email", s.handleVerifyEmail)
	guarded.POST("/resend-code", s.handleResendCode)
	guarded.POST("/login", s.handleLogin)
	auth.POST("/logout", s.authRequired(), s.handleLogout)
	auth.PUT("/change-pin", s.authRequired(), s.handleChangePin)

	accounts := api.Group("/accounts", s.authRequired())
	accounts.GET("/balance", s.handleBalance)
	accounts.GET("/info", s.handleAccountInfo)

	tx := api.Group("/transactions", s.authRequired())
	tx.POST("/withdraw", s.handleWithdraw)
	tx.POST("/deposit", s.handleDeposit)
	tx.POST("/transfer", s.handleTransfer)
	tx.GET("/history", s.handleHistory)

	return r
}

// requestID tags every request for log correlation, echoing a client
// supplied id when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

const ctxAccountID = "accountID"

// authRequired validates the bearer token and injects the account id.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			response.Fail(c, http.StatusUnauthorized, "Sesión inválida. Ingresa nuevamente.")
			return
		}
		claims, err := s.jwt.Parse(header[len(prefix):])
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Sesión inválida. Ingresa nuevamente.")
			return
		}
		c.Set(ctxAccountID, claims.AccountID)
		c.Next()
	}
}

// fail maps a store error to its status and {message} body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Error interno del servidor"
	switch {
	case errors.Is(err, ErrEmailTaken):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, ErrBadCredentials), errors.Is(err, ErrNotVerified):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrAccountNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, ErrWrongPin),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrUnknownDestination),
		errors.Is(err, ErrSelfTransfer):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		s.log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("ledger internal error")
	}
	response.Fail(c, status, msg)
}

// sendCode emails the verification code, or logs it when no mailer is
// configured.
func (s *Server) sendCode(ctx context.Context, email, code string) {
	if s.mail == nil {
		s.log.WithFields(logrus.Fields{"email": email, "code": code}).Info("verification code (no mailer configured)")
		return
	}
	text, html, err := mailer.RenderVerification("Cajero", code, s.codeTTL)
	if err != nil {
		s.log.WithError(err).Warn("verification template failed, sending text only")
	}
	if err := s.mail.Send(ctx, email, "Código de verificación", text, html); err != nil {
		s.log.WithError(err).WithField("email", email).Warn("verification email failed, code logged instead")
		s.log.WithFields(logrus.Fields{"email": email, "code": code}).Info("verification code")
	}
}
