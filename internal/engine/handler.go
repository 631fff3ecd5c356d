package engine

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/account"
	"github.com/defi-pool/defi_pool/internal/policy"
	"github.com/defi-pool/defi_pool/internal/risk"
	"github.com/defi-pool/defi_pool/internal/token"
)

// Handler exposes the transition engine over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler builds an engine HTTP handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Signup registers a new user.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.User == "" {
		return fiber.NewError(http.StatusBadRequest, "user is required")
	}
	if err := h.engine.Signup(req.User, req.Username); err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusCreated).JSON(OperationResponse{User: req.User})
}

// Deposit funds the user's stablecoin balance from the external contract.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	req, err := parseAmount(c)
	if err != nil {
		return err
	}
	if err := h.engine.Deposit(c.UserContext(), req.User, req.Token, req.Amount); err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusOK).JSON(OperationResponse{
		User: req.User, Token: req.Token, Amount: req.Amount.String(),
	})
}

// DepositCollateral runs the risk-gated collateral deposit.
func (h *Handler) DepositCollateral(c *fiber.Ctx) error {
	req, err := parseAmount(c)
	if err != nil {
		return err
	}
	verdict, err := h.engine.DepositCollateral(c.UserContext(), req.User, req.Token, req.Amount)
	if err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusOK).JSON(verdictResponse(req, verdict))
}

// Borrow runs the risk-gated borrow.
func (h *Handler) Borrow(c *fiber.Ctx) error {
	req, err := parseAmount(c)
	if err != nil {
		return err
	}
	verdict, err := h.engine.Borrow(c.UserContext(), req.User, req.Token, req.Amount)
	if err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusOK).JSON(verdictResponse(req, verdict))
}

// Repay pays down the borrowed position.
func (h *Handler) Repay(c *fiber.Ctx) error {
	req, err := parseAmount(c)
	if err != nil {
		return err
	}
	if err := h.engine.Repay(req.User, req.Token, req.Amount); err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusOK).JSON(OperationResponse{
		User: req.User, Token: req.Token, Amount: req.Amount.String(),
	})
}

// WithdrawCollateral releases collateral within the policy bounds.
func (h *Handler) WithdrawCollateral(c *fiber.Ctx) error {
	req, err := parseAmount(c)
	if err != nil {
		return err
	}
	if err := h.engine.WithdrawCollateral(req.User, req.Token, req.Amount); err != nil {
		return operationError(err)
	}
	return c.Status(http.StatusOK).JSON(OperationResponse{
		User: req.User, Token: req.Token, Amount: req.Amount.String(),
	})
}

// Users lists registered user identifiers.
func (h *Handler) Users(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"users": h.engine.Users()})
}

// Account returns the account snapshot for a user.
func (h *Handler) Account(c *fiber.Ctx) error {
	user := c.Params("user")
	snap, ok := h.engine.Account(user)
	if !ok {
		return fiber.NewError(http.StatusNotFound, account.ErrUserNotFound.Error())
	}
	return c.Status(http.StatusOK).JSON(AccountResponse{
		User:        user,
		Username:    snap.Username,
		Balances:    amountStrings(snap.Balances),
		Collateral:  amountStrings(snap.Collateral),
		Borrowed:    amountStrings(snap.Borrowed),
		CreditScore: snap.CreditScore.String(),
		RiskAdvice:  snap.RiskAdvice,
	})
}

// Username returns the stored username for a user.
func (h *Handler) Username(c *fiber.Ctx) error {
	user := c.Params("user")
	username, ok := h.engine.Username(user)
	if !ok {
		return fiber.NewError(http.StatusNotFound, account.ErrUserNotFound.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user, "username": username})
}

// Balances returns the user's per-token stablecoin balances.
func (h *Handler) Balances(c *fiber.Ctx) error {
	user := c.Params("user")
	balances, ok := h.engine.Balances(user)
	if !ok {
		return fiber.NewError(http.StatusNotFound, account.ErrUserNotFound.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user, "balances": amountStrings(balances)})
}

// Supply returns the aggregate stablecoin balance held in a token.
func (h *Handler) Supply(c *fiber.Ctx) error {
	symbol := c.Params("token")
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token":        symbol,
		"total_supply": h.engine.TokenSupply(symbol).String(),
	})
}

func parseAmount(c *fiber.Ctx) (AmountRequest, error) {
	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return AmountRequest{}, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.User == "" || req.Token == "" {
		return AmountRequest{}, fiber.NewError(http.StatusBadRequest, "user and token are required")
	}
	if req.Amount == nil {
		return AmountRequest{}, fiber.NewError(http.StatusBadRequest, "amount is required")
	}
	return req, nil
}

func verdictResponse(req AmountRequest, verdict risk.Verdict) OperationResponse {
	return OperationResponse{
		User:    req.User,
		Token:   req.Token,
		Amount:  req.Amount.String(),
		Verdict: verdict.Outcome.String(),
		Advice:  verdict.Advice,
	}
}

// operationError maps the engine error taxonomy onto HTTP statuses: policy
// violations are unprocessable, unknown references are not found, rejected
// risk verdicts are forbidden, and external-call failures are bad gateways.
func operationError(err error) error {
	switch {
	case errors.Is(err, ErrHighRisk):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, account.ErrUserNotFound), errors.Is(err, token.ErrUnknownToken):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrUserExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrAmountNotPositive):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, policy.ErrInsufficientCollateral),
		errors.Is(err, policy.ErrBelowMinimumCollateral),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInsufficientBorrowed),
		errors.Is(err, account.ErrNegativeAmount):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, token.ErrTransferFailed),
		errors.Is(err, token.ErrMintFailed),
		errors.Is(err, token.ErrInsufficientFunds),
		errors.Is(err, token.ErrInsufficientAllowance):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
