package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"feefocus/internal/billing"
	"feefocus/internal/entity"
	"feefocus/internal/usecase"
)

type subscriptionInput struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	BillingCycle    string  `json:"billingCycle"`
	Category        string  `json:"category"`
	NextPaymentDate string  `json:"nextPaymentDate"`
}

type subscriptionPatchInput struct {
	Name            *string  `json:"name"`
	Price           *float64 `json:"price"`
	Currency        *string  `json:"currency"`
	BillingCycle    *string  `json:"billingCycle"`
	Category        *string  `json:"category"`
	NextPaymentDate *string  `json:"nextPaymentDate"`
}

type subscriptionResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	BillingCycle    string  `json:"billingCycle"`
	Category        string  `json:"category"`
	NextPaymentDate string  `json:"nextPaymentDate"`
}

type rateTableResponse struct {
	Rates       map[string]float64 `json:"rates"`
	LastUpdated string             `json:"lastUpdated"`
	Stale       bool               `json:"stale"`
	Warning     string             `json:"warning,omitempty"`
}

func toResponse(s entity.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:              s.ID.String(),
		Name:            s.Name,
		Price:           s.Price,
		Currency:        s.Currency,
		BillingCycle:    string(s.BillingCycle),
		Category:        s.Category,
		NextPaymentDate: s.NextPaymentDate.Format(time.DateOnly),
	}
}

// parseDate reads an ISO calendar date; time of day is never accepted.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return billing.Midnight(t), nil
}

func today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

func setupRouter(r *gin.Engine, u UseCases) {
	r.HandleMethodNotAllowed = true

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	{
		v1 := r.Group("api/v1/")
		setupSubscriptions(v1, u)
		setupSubscriptionsID(v1, u)
		setupAggregates(v1, u)
		setupRates(v1, u)
		setupSettings(v1, u)
	}
}

func setupSubscriptions(r *gin.RouterGroup, u UseCases) {
	r.GET("/subscriptions", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		key := usecase.SortKey(c.Query("sort"))
		reverse := false
		if rv := c.Query("reverse"); rv != "" {
			v, err := strconv.ParseBool(rv)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid reverse flag"})
				return
			}
			reverse = v
		}

		subs, err := u.Ledger.List(key, reverse)
		if errors.Is(err, usecase.ErrInvalidSortKey) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid sort key"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := make([]subscriptionResponse, 0, len(subs))
		for _, s := range subs {
			resp = append(resp, toResponse(s))
		}
		c.JSON(http.StatusOK, resp)
	})

	r.POST("/subscriptions", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}
		if c.ContentType() != "" && c.ContentType() != "application/json" {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Use application/json"})
			return
		}

		var input subscriptionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sub := entity.Subscription{
			Name:         input.Name,
			Price:        input.Price,
			Currency:     input.Currency,
			BillingCycle: entity.BillingCycle(input.BillingCycle),
			Category:     input.Category,
		}
		if input.NextPaymentDate != "" {
			d, err := parseDate(input.NextPaymentDate)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid nextPaymentDate"})
				return
			}
			sub.NextPaymentDate = d
		}

		created, err := u.Ledger.Add(c, sub)
		switch {
		case errors.Is(err, usecase.ErrInvalidSubscription):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusCreated, toResponse(created))
	})

	// bulk clear is irreversible; it refuses to run without explicit confirmation
	r.DELETE("/subscriptions", func(c *gin.Context) {
		if c.Query("confirm") != "true" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirm=true required"})
			return
		}
		if err := u.Ledger.Clear(c); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.OPTIONS("/subscriptions", func(c *gin.Context) {
		c.Writer.Header().Set("Allow", "POST,OPTIONS,GET,DELETE")
		c.Status(http.StatusNoContent)
	})
}

func setupSubscriptionsID(r *gin.RouterGroup, u UseCases) {
	parseID := func(c *gin.Context) (string, bool) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid id"})
			return "", false
		}
		return id.String(), true
	}

	r.GET("/subscriptions/:id", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}

		sub, found := u.Ledger.Get(strfmt.UUID(id))
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, toResponse(sub))
	})

	r.PUT("/subscriptions/:id", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}
		if c.ContentType() != "" && c.ContentType() != "application/json" {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Use application/json"})
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}

		var input subscriptionPatchInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		patch := usecase.SubscriptionPatch{
			Name:     input.Name,
			Price:    input.Price,
			Currency: input.Currency,
			Category: input.Category,
		}
		if input.BillingCycle != nil {
			cycle := entity.BillingCycle(*input.BillingCycle)
			patch.BillingCycle = &cycle
		}
		if input.NextPaymentDate != nil {
			d, err := parseDate(*input.NextPaymentDate)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid nextPaymentDate"})
				return
			}
			patch.NextPaymentDate = &d
		}

		updated, found, err := u.Ledger.Update(c, strfmt.UUID(id), patch)
		switch {
		case errors.Is(err, usecase.ErrInvalidSubscription):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		case !found:
			// updating an unknown id is an idempotent no-op
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, toResponse(updated))
	})

	r.DELETE("/subscriptions/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		// removal of an unknown id is an idempotent no-op, so both outcomes
		// answer the same way
		if _, err := u.Ledger.Remove(c, strfmt.UUID(id)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.OPTIONS("/subscriptions/:id", func(c *gin.Context) {
		c.Writer.Header().Set("Allow", "PUT,OPTIONS,GET,DELETE")
		c.Status(http.StatusNoContent)
	})
}

func setupAggregates(r *gin.RouterGroup, u UseCases) {
	r.GET("/summary", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		g := usecase.Granularity(c.DefaultQuery("granularity", string(usecase.GranularityMonthly)))
		target := c.Query("currency")
		if target == "" {
			target = u.Rates.DefaultCurrency()
		}

		total, err := u.Ledger.TotalAt(g, target, u.Rates.Current())
		switch {
		case errors.Is(err, usecase.ErrInvalidGranularity):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid granularity"})
			return
		case errors.Is(err, usecase.ErrInvalidCurrency):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid currency"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":       total,
			"currency":    target,
			"granularity": g,
			"formatted":   billing.Format(total, target),
		})
	})

	r.GET("/categories", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		// with no target currency each category sums native prices; only
		// meaningful for a same-currency ledger
		target := c.Query("currency")
		groups, err := u.Ledger.GroupByCategory(target, u.Rates.Current())
		switch {
		case errors.Is(err, usecase.ErrInvalidCurrency):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid currency"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"categories": groups, "currency": target})
	})

	r.GET("/counts", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		ref := time.Now().UTC()
		if s := c.Query("date"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid date"})
				return
			}
			ref = d
		}

		c.JSON(http.StatusOK, gin.H{
			"active":  u.Ledger.CountActive(ref),
			"expired": u.Ledger.CountExpired(ref),
		})
	})

	r.GET("/calendar", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		year, err := strconv.Atoi(c.Query("year"))
		if err != nil || year < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid year"})
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid month"})
			return
		}

		days := u.Ledger.UpcomingInMonth(year, time.Month(month))
		resp := make(map[int][]subscriptionResponse, len(days))
		for day, subs := range days {
			items := make([]subscriptionResponse, 0, len(subs))
			for _, s := range subs {
				items = append(items, toResponse(s))
			}
			resp[day] = items
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "days": resp})
	})

	r.POST("/maintenance", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		rolled, err := u.Ledger.RollForwardExpired(c, time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rolled": rolled})
	})
}

func setupRates(r *gin.RouterGroup, u UseCases) {
	r.GET("/rates", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		table := u.Rates.Current()
		c.JSON(http.StatusOK, rateTableResponse{
			Rates:       table.Rates,
			LastUpdated: table.LastUpdated,
			Stale:       u.Rates.NeedsRefresh(today()),
		})
	})

	r.POST("/rates/refresh", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		table, err := u.Rates.Refresh(c, today())
		switch {
		case errors.Is(err, usecase.ErrRateFetch):
			// degraded, not failed: the previous table stays usable and the
			// client shows a non-blocking warning
			c.JSON(http.StatusOK, rateTableResponse{
				Rates:       table.Rates,
				LastUpdated: table.LastUpdated,
				Stale:       true,
				Warning:     "exchange rates may be stale, last updated " + table.LastUpdated,
			})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, rateTableResponse{
			Rates:       table.Rates,
			LastUpdated: table.LastUpdated,
			Stale:       table.LastUpdated != today(),
		})
	})
}

func setupSettings(r *gin.RouterGroup, u UseCases) {
	r.GET("/settings/currency", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"currency": u.Rates.DefaultCurrency()})
	})

	r.PUT("/settings/currency", func(c *gin.Context) {
		if !requireAcceptJSON(c) {
			return
		}

		var input struct {
			Currency string `json:"currency"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := u.Rates.SetDefaultCurrency(c, strings.ToUpper(strings.TrimSpace(input.Currency)))
		switch {
		case errors.Is(err, usecase.ErrInvalidCurrency):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid currency"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"currency": u.Rates.DefaultCurrency()})
	})
}

func acceptsJSON(h string) bool {
	if h == "" || h == "*/*" {
		return true
	}
	parts := strings.Split(h, ",")
	for _, p := range parts {
		mt := strings.TrimSpace(strings.SplitN(p, ";", 2)[0])
		if mt == "application/json" || mt == "*/*" {
			return true
		}
	}
	return false
}

func requireAcceptJSON(c *gin.Context) bool {
	if acceptsJSON(c.GetHeader("Accept")) {
		return true
	}
	c.JSON(http.StatusNotAcceptable, gin.H{"error": "Accept application/json only"})
	return false
}
