package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banclabs/cajero/pkg/helpers"
	"github.com/banclabs/cajero/pkg/response"
	"github.com/banclabs/cajero/pkg/validation"
)

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email_tld"`
	Pin       string `json:"pin" validate:"required,len=4,numeric"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email_tld"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email_tld"`
}

type loginRequest struct {
	AccountID string `json:"accountId" validate:"required,min=4,numeric"`
	Pin       string `json:"pin" validate:"required,len=4,numeric"`
}

type changePinRequest struct {
	CurrentPin string `json:"currentPin" validate:"required,len=4,numeric"`
	NewPin     string `json:"newPin" validate:"required,len=4,numeric"`
}

// bind decodes and validates the request body, writing the 422 itself
// when something is off.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Invalid(c, "Datos inválidos", validation.ToDetails(err))
		return false
	}
	if details := validation.Struct(dst); details != nil {
		response.Invalid(c, "Datos inválidos", details)
		return false
	}
	return true
}

// handleRegister creates a pending account and dispatches its
// verification code.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	acc, err := s.store.Register(req.FirstName, req.LastName, req.Email, req.Pin)
	if err != nil {
		s.fail(c, err)
		return
	}
	code, err := helpers.GenVerificationCode()
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.codes.Put(c.Request.Context(), acc.Email, code, s.codeTTL); err != nil {
		s.fail(c, err)
		return
	}
	s.sendCode(c.Request.Context(), acc.Email, code)
	s.log.WithField("email", acc.Email).Info("account registered, verification pending")
	response.Message(c, http.StatusCreated, "Registro exitoso. Enviamos un código de 6 dígitos a tu correo.")
}

// handleVerifyEmail checks the code and activates the account. The
// success message embeds the account number as "N°<digits>"; the client
// extracts it best-effort.
func (s *Server) handleVerifyEmail(c *gin.Context) {
	var req verifyRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	stored, ok, err := s.codes.Get(ctx, req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok || stored != req.Code {
		response.Fail(c, http.StatusBadRequest, "Código inválido o vencido")
		return
	}
	acc, err := s.store.Verify(req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	_ = s.codes.Delete(ctx, req.Email)
	s.log.WithField("email", acc.Email).Info("account activated")
	response.Message(c, http.StatusOK, "¡Cuenta activada! Tu número de cuenta es N°"+acc.Number)
}

// handleResendCode regenerates the code for a pending account.
func (s *Server) handleResendCode(c *gin.Context) {
	var req resendRequest
	if !bind(c, &req) {
		return
	}
	acc, found := s.store.FindByEmail(req.Email)
	if !found {
		response.Fail(c, http.StatusNotFound, "No hay un registro pendiente para ese correo")
		return
	}
	if acc.Verified {
		response.Fail(c, http.StatusBadRequest, "La cuenta ya está verificada")
		return
	}
	code, err := helpers.GenVerificationCode()
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.codes.Put(c.Request.Context(), acc.Email, code, s.codeTTL); err != nil {
		s.fail(c, err)
		return
	}
	s.sendCode(c.Request.Context(), acc.Email, code)
	response.Message(c, http.StatusOK, "Código reenviado. Revisa tu correo.")
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	acc, err := s.store.Authenticate(req.AccountID, req.Pin)
	if err != nil {
		s.fail(c, err)
		return
	}
	token, _, err := s.jwt.Generate(acc.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("account", acc.Number).Info("login")
	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"accountId":     acc.ID,
		"accountNumber": acc.Number,
		"holderName":    acc.HolderName(),
	})
}

// handleLogout is stateless on the server: tokens simply expire. The
// endpoint exists so the client's logout call has somewhere to land.
func (s *Server) handleLogout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) handleChangePin(c *gin.Context) {
	var req changePinRequest
	if !bind(c, &req) {
		return
	}
	if err := s.store.ChangePin(c.GetString(ctxAccountID), req.CurrentPin, req.NewPin); err != nil {
		s.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "PIN actualizado correctamente")
}
