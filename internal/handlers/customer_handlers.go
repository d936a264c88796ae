package handlers

import (
	"net/http"
	"time"
	"timeRegistration/internal/handlers/dto"
	"timeRegistration/internal/logger"
	"timeRegistration/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// заказчики и проекты - справочники, которые ведёт менеджер

type CustomerHandler struct {
	CustomerService CustomerService
	ProjectService  ProjectService
}

func NewCustomerHandler(customers CustomerService, projects ProjectService) CustomerHandler {
	return CustomerHandler{
		CustomerService: customers,
		ProjectService:  projects,
	}
}

func (h *CustomerHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	customers, err := h.CustomerService.GetCustomers(r.Context(), user)
	if err != nil {
		handleError(w, r, err, "get_customers")
		return
	}

	logOut("Заказчики получены", start, http.StatusOK, zap.Int("count", len(customers)))
	responseWithBody(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "customerId")
	if !ok {
		return
	}

	customer, err := h.CustomerService.GetCustomer(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err, "get_customer")
		return
	}

	logOut("Заказчик получен", start, http.StatusOK, zap.String("customer_id", id.String()))
	responseWithBody(w, http.StatusOK, customer)
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	var request dto.CustomerRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	customer, err := h.CustomerService.CreateCustomer(r.Context(), user, request.Name)
	if err != nil {
		handleError(w, r, err, "create_customer")
		return
	}

	logOut("Заказчик создан", start, http.StatusCreated, zap.String("customer_id", customer.ID.String()))
	responseWithBody(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "customerId")
	if !ok {
		return
	}

	var request dto.CustomerRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	customer, err := h.CustomerService.UpdateCustomer(r.Context(), user, id, request.Name)
	if err != nil {
		handleError(w, r, err, "update_customer")
		return
	}

	logOut("Заказчик обновлён", start, http.StatusOK, zap.String("customer_id", id.String()))
	responseWithBody(w, http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "customerId")
	if !ok {
		return
	}

	if err := h.CustomerService.DeleteCustomer(r.Context(), user, id); err != nil {
		handleError(w, r, err, "delete_customer")
		return
	}

	logOut("Заказчик удалён", start, http.StatusNoContent, zap.String("customer_id", id.String()))
	responseNoContent(w)
}

func (h *CustomerHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Warn("HTTP: Ошибка получения параметра",
				zap.String("querry", "customerId"),
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "неверный customerId: "+err.Error())
			return
		}
		customerID = &id
	}

	projects, err := h.ProjectService.GetProjects(r.Context(), user, customerID)
	if err != nil {
		handleError(w, r, err, "get_projects")
		return
	}

	logOut("Проекты получены", start, http.StatusOK, zap.Int("count", len(projects)))
	responseWithBody(w, http.StatusOK, projects)
}

func (h *CustomerHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "projectId")
	if !ok {
		return
	}

	project, err := h.ProjectService.GetProject(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err, "get_project")
		return
	}

	logOut("Проект получен", start, http.StatusOK, zap.String("project_id", id.String()))
	responseWithBody(w, http.StatusOK, project)
}

func (h *CustomerHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}

	var request dto.ProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	project, err := h.ProjectService.CreateProject(r.Context(), user, service.ProjectInput{
		CustomerID:  request.CustomerID,
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		handleError(w, r, err, "create_project")
		return
	}

	logOut("Проект создан", start, http.StatusCreated, zap.String("project_id", project.ID.String()))
	responseWithBody(w, http.StatusCreated, project)
}

func (h *CustomerHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "projectId")
	if !ok {
		return
	}

	var request dto.ProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	project, err := h.ProjectService.UpdateProject(r.Context(), user, id, service.ProjectInput{
		CustomerID:  request.CustomerID,
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		handleError(w, r, err, "update_project")
		return
	}

	logOut("Проект обновлён", start, http.StatusOK, zap.String("project_id", id.String()))
	responseWithBody(w, http.StatusOK, project)
}

func (h *CustomerHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "projectId")
	if !ok {
		return
	}

	if err := h.ProjectService.DeleteProject(r.Context(), user, id); err != nil {
		handleError(w, r, err, "delete_project")
		return
	}

	logOut("Проект удалён", start, http.StatusNoContent, zap.String("project_id", id.String()))
	responseNoContent(w)
}
