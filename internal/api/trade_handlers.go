package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/quote"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

type tradeRequest struct {
	Direction    string `json:"direction"`
	TokenAddress string `json:"token_address"`
	Amount       string `json:"amount"`
}

func (s *APIServer) pair(direction, token string) (quote.Pair, error) {
	pair := s.services.Market.Pair(models.TradeDirection(direction), token)
	if err := pair.Validate(); err != nil {
		return quote.Pair{}, errs.Validation("token", err.Error())
	}
	return pair, nil
}

func (s *APIServer) handleQuote(c *fiber.Ctx) error {
	pair, err := s.pair(c.Query("direction"), c.Query("token"))
	if err != nil {
		return s.writeError(c, err)
	}
	amount, err := utils.ParseAmount(c.Query("amount"))
	if err != nil {
		return s.writeError(c, errs.Validation("amount", "Please enter a valid amount"))
	}

	q, err := s.services.Trader.Quote(c.UserContext(), pair, amount)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(q)
}

func (s *APIServer) handleBalance(c *fiber.Ctx) error {
	token := c.Query("token", s.services.Market.VirtualToken)
	if !utils.IsValidEthereumAddress(token) {
		return s.writeError(c, errs.Validation("token", "Invalid token address"))
	}

	balance, err := s.services.Trader.Balance(c.UserContext(), token)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"token_address": token,
		"balance":       utils.FormatAmount(balance),
	})
}

func (s *APIServer) handleTrade(c *fiber.Ctx) error {
	var req tradeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, errs.Validation("body", "Invalid request body"))
	}
	pair, err := s.pair(req.Direction, req.TokenAddress)
	if err != nil {
		return s.writeError(c, err)
	}

	ctx := c.UserContext()
	balance, err := s.services.Trader.SpendableBalance(ctx, pair)
	if err != nil {
		return s.writeError(c, err)
	}

	receipt, err := s.services.Trader.Submit(ctx, pair, req.Amount, balance)
	if err != nil {
		if receipt != nil {
			return c.Status(errs.HTTPStatus(err)).JSON(fiber.Map{
				"error": errs.UserMessage(err),
				"trade": receipt.Record,
			})
		}
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": receipt.Success,
		"message": receipt.Message,
		"balance": receipt.Balance,
		"trade":   receipt.Record,
	})
}

func (s *APIServer) handleListTrades(c *fiber.Ctx) error {
	if s.services.Trades == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Trade history is not available"})
	}
	wallet, err := s.walletParam(c)
	if err != nil {
		return s.writeError(c, err)
	}

	trades, err := s.services.Trades.ListTrades(wallet, c.QueryInt("limit", 50))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": trades})
}

func (s *APIServer) handleRegisterSnipe(c *fiber.Ctx) error {
	if s.services.Snipes == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Snipes are not available"})
	}
	var req backend.SnipeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, errs.Validation("body", "Invalid request body"))
	}

	ctx := c.UserContext()
	if req.WalletAddress == "" {
		wallet, err := s.services.Auth.ConnectedAddress(ctx)
		if err != nil {
			return s.writeError(c, err)
		}
		req.WalletAddress = wallet
	}

	order, err := s.services.Snipes.Register(ctx, req)
	if err != nil {
		var ve *errs.ValidationError
		if order != nil && !errors.As(err, &ve) {
			return c.Status(errs.HTTPStatus(err)).JSON(fiber.Map{
				"error": errs.UserMessage(err),
				"snipe": order,
			})
		}
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (s *APIServer) handleListSnipes(c *fiber.Ctx) error {
	if s.services.Snipes == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Snipes are not available"})
	}
	wallet, err := s.walletParam(c)
	if err != nil {
		return s.writeError(c, err)
	}

	orders, err := s.services.Snipes.ListSnipes(wallet)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": orders})
}

// walletParam returns the wallet query parameter, or the connected wallet when it is absent
func (s *APIServer) walletParam(c *fiber.Ctx) (string, error) {
	if wallet := c.Query("wallet"); wallet != "" {
		normalized, err := utils.NormalizeAddress(wallet)
		if err != nil {
			return "", errs.Validation("wallet", "Invalid wallet address")
		}
		return normalized, nil
	}
	return s.services.Auth.ConnectedAddress(c.UserContext())
}
