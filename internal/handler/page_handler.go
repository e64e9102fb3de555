package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginPage GET /
func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}
