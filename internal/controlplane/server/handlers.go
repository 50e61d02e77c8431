package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/errclass"
)

// errorResponse 失败响应体：只暴露分类后的错误
type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// writeOpError 把分类错误映射为 HTTP 响应
func writeOpError(c *gin.Context, err error) {
	ce := errclass.Classify(err)
	status := http.StatusBadGateway
	switch ce.Category {
	case errclass.CategoryValidation, errclass.CategoryWallet:
		status = http.StatusBadRequest
	case errclass.CategoryContract:
		status = http.StatusConflict
	}
	c.JSON(status, errorResponse{Code: ce.Code, Message: ce.Message, Category: string(ce.Category)})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": s.sess.Products()})
}

func (s *Server) handlePurchases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"purchases": s.sess.Purchases()})
}

func (s *Server) handleListings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": s.sess.SellerProducts()})
}

func (s *Server) handleNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": s.sess.Notifications()})
}

func (s *Server) handleActivityList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := s.listActivity(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []ActivityEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// handleRefresh 手动触发全量刷新
func (s *Server) handleRefresh(c *gin.Context) {
	ctx := c.Request.Context()
	catalogErr := s.sess.LoadCatalog(ctx)
	callerErr := s.sess.LoadCallerData(ctx)
	if catalogErr != nil {
		writeOpError(c, catalogErr)
		return
	}
	if callerErr != nil {
		writeOpError(c, callerErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// addProductRequest 上架请求体（价格为展示单位十进制字符串）
type addProductRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	DownloadLink string `json:"download_link"`
}

func (s *Server) handleAddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体解析失败"})
		return
	}

	s.sess.SetDraft(domain.ProductDraft{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DownloadLink: req.DownloadLink,
	})

	err := s.sess.AddProduct(c.Request.Context())
	s.recordActivity(c.Request.Context(), "add_product", "", req.Name, err)
	if err != nil {
		writeOpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handlePurchaseProduct(c *gin.Context) {
	productID := c.Param("productID")
	err := s.sess.PurchaseProduct(c.Request.Context(), productID)
	s.recordActivity(c.Request.Context(), "purchase_product", productID, "", err)
	if err != nil {
		writeOpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "purchase_modal": s.sess.Snapshot().PurchaseModal})
}

func (s *Server) handleToggleAvailability(c *gin.Context) {
	productID := c.Param("productID")
	err := s.sess.ToggleAvailability(c.Request.Context(), productID)
	s.recordActivity(c.Request.Context(), "toggle_product_availability", productID, "", err)
	if err != nil {
		writeOpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDownloadLink(c *gin.Context) {
	productID := c.Param("productID")
	if err := s.sess.GetDownloadLink(c.Request.Context(), productID); err != nil {
		writeOpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"download_modal": s.sess.Snapshot().DownloadModal})
}

func (s *Server) handleCloseDownloadModal(c *gin.Context) {
	s.sess.CloseDownloadModal()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleClosePurchaseModal(c *gin.Context) {
	s.sess.ClosePurchaseModal()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
