package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/feed"
	"github.com/rxtech-lab/hashnipe/internal/virtuals"
)

// pageParams reads page and pageSize query parameters. A missing or non-positive page is 1
// and a missing page size is 0, which means the configured default.
func pageParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("pageSize", 0)
	if pageSize < 0 || pageSize > 100 {
		pageSize = 0
	}
	return page, pageSize
}

func (s *APIServer) handleListLaunches(c *fiber.Ctx) error {
	filter, err := feed.ParseFilter(c.Query("filter"))
	if err != nil {
		return s.writeError(c, err)
	}
	page, pageSize := pageParams(c)

	result, err := s.services.Launches.List(c.UserContext(), filter, page, pageSize)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"filter":     filter,
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

func (s *APIServer) handleTopLaunches(c *fiber.Ctx) error {
	top, active, err := s.services.Launches.Top(c.UserContext())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":        top,
		"active_count": len(active),
	})
}

func (s *APIServer) handleGetLaunch(c *fiber.Ctx) error {
	launch, err := s.services.Launches.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(launch)
}

func (s *APIServer) handleListTokens(c *fiber.Ctx) error {
	category, err := virtuals.ParseCategory(c.Params("category"))
	if err != nil {
		return s.writeError(c, err)
	}
	page, pageSize := pageParams(c)
	if pageSize == 0 {
		pageSize = s.services.Config.PageSize
	}

	result, err := s.services.Virtuals.ListVirtuals(c.UserContext(), virtuals.VirtualQuery{
		Page:     page,
		PageSize: pageSize,
		Category: category,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"category":   category,
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

func (s *APIServer) handleGetTokenomics(c *fiber.Ctx) error {
	if s.services.Tokenomics == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Tokenomics are not available"})
	}
	id, err := strconv.ParseInt(c.Params("virtualId"), 10, 64)
	if err != nil {
		return s.writeError(c, errs.Validation("virtualId", "virtual id must be a number"))
	}

	summary, err := s.services.Tokenomics.GetTokenomics(c.UserContext(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"virtual_id":       summary.VirtualID,
		"symbol":           summary.Symbol,
		"total_bips":       summary.TotalBips,
		"locked_bips":      summary.LockedBips,
		"locked_percent":   summary.LockedPercent(),
		"unallocated_bips": summary.Unallocated,
		"entries":          summary.Entries,
	})
}
