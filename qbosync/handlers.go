package qbosync

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/qbo_connector/config"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

// RegisterRoutes wires the connector's HTTP surface onto the router.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/qbo", AuthStartHandler())
	r.GET("/auth/qbo/callback", AuthCallbackHandler())

	api := r.Group("/api")
	api.POST("/handle-customer-create", CustomerCreateHookHandler())
	api.POST("/sync/customers", SyncCustomersHandler())
	api.POST("/sync/customer/:name", SyncCustomerHandler())
	api.POST("/sync/invoice/:name", SyncInvoiceHandler())
	api.POST("/sync/payment/:name", SyncPaymentHandler())
	api.POST("/pull/payment/:id", PullPaymentHandler())
	api.POST("/pull/items", PullItemsHandler())
	api.POST("/items/:name/price", PushItemPriceHandler())
	api.POST("/items/:name/cost", PushItemCostHandler())
	api.GET("/sync-runs", SyncRunsHandler())
	api.GET("/sync-runs/:id", SyncRunHandler())
}

func AuthStartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := StartAuthURL(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Redirect(http.StatusFound, url)
	}
}

func AuthCallbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := c.Query("state")
		code := c.Query("code")
		realmId := c.Query("realmId")
		if state == "" || code == "" || realmId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "state, code and realmId are required"})
			return
		}
		if err := CompleteAuth(c.Request.Context(), state, code, realmId); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "connected", "realm": realmId})
	}
}

// CustomerCreateHookHandler is the ERP's after-insert webhook target: a
// freshly created customer gets one immediate sync attempt.
func CustomerCreateHookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CustomerName string `json:"customer_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CustomerName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_name is required"})
			return
		}
		runSingleCustomer(c, req.CustomerName)
	}
}

func SyncCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		runSingleCustomer(c, c.Param("name"))
	}
}

func runSingleCustomer(c *gin.Context, name string) {
	deps, err := BuildDeps(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	outcome, err := SyncCustomer(c.Request.Context(), deps, name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomeResponse(name, outcome))
}

func SyncCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		report, err := RunCustomerBatch(c.Request.Context(), deps, models.SyncTriggeredManual)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"matched":   report.Matched,
			"not_found": report.NotFound,
			"skipped":   report.Skipped,
			"failed":    report.Failed,
			"counts": gin.H{
				"matched":   len(report.Matched),
				"not_found": len(report.NotFound),
				"skipped":   len(report.Skipped),
				"failed":    len(report.Failed),
			},
		})
	}
}

func SyncInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		name := c.Param("name")
		outcome, err := SyncInvoice(c.Request.Context(), deps, name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, outcomeResponse(name, outcome))
	}
}

func SyncPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		name := c.Param("name")
		outcome, err := SyncPayment(c.Request.Context(), deps, name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, outcomeResponse(name, outcome))
	}
}

func PullPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		result, err := PullPayment(c.Request.Context(), deps, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func PullItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		report, err := PullItems(c.Request.Context(), deps)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func PushItemPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		name := c.Param("name")
		if err := PushItemPrice(c.Request.Context(), deps, name); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": name, "status": "price pushed"})
	}
}

func PushItemCostHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := BuildDeps(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		name := c.Param("name")
		if err := PushItemCost(c.Request.Context(), deps, name); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": name, "status": "cost pushed"})
	}
}

func SyncRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history store is not connected"})
			return
		}
		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		var runs []models.SyncRun
		query := db.WithContext(c.Request.Context()).Order("id DESC").Limit(limit)
		if entityType := c.Query("entity_type"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}
		if err := query.Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}

func SyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history store is not connected"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}
		var run models.SyncRun
		if err := db.WithContext(c.Request.Context()).Take(&run, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		var runErrors []models.SyncRunError
		if err := db.WithContext(c.Request.Context()).Where("sync_run_id = ?", run.ID).Find(&runErrors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"run": run, "errors": runErrors})
	}
}

func outcomeResponse(name string, outcome Outcome) gin.H {
	resp := gin.H{"name": name}
	switch outcome.Kind {
	case OutcomeNoop:
		resp["status"] = "already synced"
	case OutcomeMatched:
		if outcome.Created {
			resp["status"] = "created"
		} else {
			resp["status"] = "matched"
		}
		resp["qbo_id"] = outcome.RemoteId
	case OutcomeSkipped:
		resp["status"] = "skipped"
		resp["sync_status"] = string(outcome.Status)
	case OutcomeNotFound:
		resp["status"] = "not found"
	}
	if outcome.Reason != "" {
		resp["reason"] = outcome.Reason
	}
	return resp
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case models.IsInvalidEntity(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsMissingConfiguration(err):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case models.IsRemoteCall(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
