package handlers

import (
	"net/http"

	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/services"

	"github.com/gin-gonic/gin"
)

func customerService(c *gin.Context) services.CustomerService {
	return services.CustomerService{Store: current().Store, RequestID: middleware.GetRequestID(c)}
}

// GET /api/v1/crm/customers?q=&page=
func ListCustomers(c *gin.Context) {
	page, err := customerService(c).List(c.Request.Context(), c.Query("q"), pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/v1/crm/customers/:id
func GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := customerService(c).Detail(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /api/v1/crm/customers
func CreateCustomer(c *gin.Context) {
	var req customerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	customer, err := customerService(c).Create(c.Request.Context(), actor(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// PUT /api/v1/crm/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req customerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	customer, err := customerService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
