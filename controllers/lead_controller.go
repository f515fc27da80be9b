package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"crmapi/models"
	"crmapi/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewLeadController(db *gorm.DB, logger *logrus.Logger) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: logger,
	}
}

// LeadFilter holds the optional list predicates. All set filters combine
// with AND; the collected-data pair is only applied when both halves are
// present.
type LeadFilter struct {
	ID                 string
	Name               string
	IsActive           *bool
	Status             string
	CollectedDataKey   string
	CollectedDataValue string
}

// apply narrows the query with every filter that is set. The id filter is a
// case-sensitive suffix match; the name filter a case-insensitive
// substring match. The same predicate is used for the page and the total
// count.
func (f LeadFilter) apply(query *gorm.DB) *gorm.DB {
	if f.ID != "" {
		query = query.Where("id LIKE ?", "%"+f.ID)
	}
	if f.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.IsActive != nil {
		query = query.Where("is_active = ?", *f.IsActive)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CollectedDataKey != "" && f.CollectedDataValue != "" {
		query = query.Where(datatypes.JSONQuery("collected_data").Equals(f.CollectedDataValue, f.CollectedDataKey))
	}
	return query
}

type PaginatedLeads struct {
	Total int64         `json:"total"`
	Leads []models.Lead `json:"leads"`
}

type CreateLeadRequest struct {
	ID                string             `json:"id" validate:"required"`
	IsActive          *bool              `json:"is_active"`
	Origin            string             `json:"origin"`
	ConversationState datatypes.JSON     `json:"conversation_state"`
	CurrentStep       string             `json:"current_step"`
	CollectedData     datatypes.JSON     `json:"collected_data"`
	PreviousStep      string             `json:"previous_step"`
	Name              string             `json:"name"`
	Status            *models.LeadStatus `json:"status"`
}

// UpdateLeadRequest carries the updatable attributes as present-or-absent
// fields. A nil pointer means "leave the stored value alone".
type UpdateLeadRequest struct {
	IsActive *bool              `json:"is_active"`
	Name     *string            `json:"name"`
	Status   *models.LeadStatus `json:"status"`
}

// GetLeads returns one page of the filtered lead set together with the
// total number of matches. The total comes from an independent count query
// over the same predicate, never from the page length.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "skip must be greater than or equal to 0", nil)
	}

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 100 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "limit must be between 1 and 100", nil)
	}

	filter := LeadFilter{
		ID:                 c.Query("lead_id"),
		Name:               c.Query("name"),
		Status:             c.Query("status"),
		CollectedDataKey:   c.Query("collected_data_key"),
		CollectedDataValue: c.Query("collected_data_value"),
	}

	if v := c.Query("is_active"); v != "" {
		isActive, err := strconv.ParseBool(v)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "is_active must be a boolean", nil)
		}
		filter.IsActive = &isActive
	}

	if filter.Status != "" && !models.LeadStatus(filter.Status).Valid() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid status", nil)
	}

	order := c.Query("order_by_created_at")
	switch order {
	case "", "asc", "desc":
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "order_by_created_at must be asc or desc", nil)
	}

	var total int64
	if err := filter.apply(lc.DB.Model(&models.Lead{})).Count(&total).Error; err != nil {
		lc.Logger.WithError(err).Error("failed to count leads")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", nil)
	}

	query := filter.apply(lc.DB.Model(&models.Lead{}))
	if order == "asc" {
		query = query.Order("created_at ASC")
	} else if order == "desc" {
		query = query.Order("created_at DESC")
	}

	leads := make([]models.Lead, 0, limit)
	if err := query.Offset(skip).Limit(limit).Find(&leads).Error; err != nil {
		lc.Logger.WithError(err).Error("failed to fetch leads")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", nil)
	}

	return c.JSON(PaginatedLeads{
		Total: total,
		Leads: leads,
	})
}

// GetLead returns a single lead by its caller-assigned id
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		lc.Logger.WithError(err).Error("failed to fetch lead")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", nil)
	}

	return c.JSON(lead)
}

// CreateLead inserts a new lead under its caller-assigned id. Creation is
// not an upsert: an existing id is a conflict. The primary key constraint
// remains authoritative when two creations race past the advisory check.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var req CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if req.Status != nil && !req.Status.Valid() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid status", nil)
	}

	var existingLead models.Lead
	if err := lc.DB.First(&existingLead, "id = ?", req.ID).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Lead already exists", nil)
	}

	lead := models.Lead{
		ID:                req.ID,
		IsActive:          true,
		Origin:            req.Origin,
		ConversationState: req.ConversationState,
		CurrentStep:       req.CurrentStep,
		CollectedData:     req.CollectedData,
		PreviousStep:      req.PreviousStep,
		Name:              req.Name,
		Status:            req.Status,
	}
	if req.IsActive != nil {
		lead.IsActive = *req.IsActive
	}
	if lead.Status == nil {
		lead.Status = utils.Pointer(models.DefaultLeadStatus)
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Lead already exists", nil)
		}
		lc.Logger.WithError(err).Error("failed to create lead")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(lead)
}

// UpdateLead applies a partial update: only fields present in the payload
// overwrite the stored record, absent fields keep their prior values.
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var req UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if req.Status != nil && !req.Status.Valid() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid status", nil)
	}

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		lc.Logger.WithError(err).Error("failed to fetch lead")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", nil)
	}

	// Explicit merge of the present fields
	if req.IsActive != nil {
		lead.IsActive = *req.IsActive
	}
	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Status != nil {
		lead.Status = req.Status
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		lc.Logger.WithError(err).Error("failed to update lead")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", nil)
	}

	return c.JSON(lead)
}
