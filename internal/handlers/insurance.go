package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/insurance"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// InsuranceHandler handles insurance cost estimation requests.
type InsuranceHandler struct {
	DB        *gorm.DB
	Estimator *insurance.Estimator
}

// NewInsuranceHandler creates a new InsuranceHandler.
func NewInsuranceHandler(db *gorm.DB, estimator *insurance.Estimator) *InsuranceHandler {
	return &InsuranceHandler{DB: db, Estimator: estimator}
}

// EstimateRequest represents the six input attributes of an estimate.
type EstimateRequest struct {
	Age      int     `json:"age" binding:"required,min=18,max=100"`
	Sex      string  `json:"sex" binding:"required,oneof=male female"`
	BMI      float64 `json:"bmi" binding:"required,min=10,max=60"`
	Children int     `json:"children" binding:"min=0,max=10"`
	Smoker   string  `json:"smoker" binding:"required,oneof=yes no"`
	Region   string  `json:"region" binding:"required,oneof=northeast northwest southeast southwest"`
}

func (r *EstimateRequest) input() insurance.Input {
	return insurance.Input{
		Age:      r.Age,
		Sex:      r.Sex,
		BMI:      r.BMI,
		Children: r.Children,
		Smoker:   r.Smoker,
		Region:   r.Region,
	}
}

// EstimateResponse represents the result of an estimate.
type EstimateResponse struct {
	PredictionID      string                 `json:"predictionId,omitempty"`
	PredictedCost     float64                `json:"predictedCost"`
	FeatureImportance []insurance.Factor     `json:"featureImportance"`
	RiskFactors       []insurance.RiskFactor `json:"riskFactors"`
}

// Estimate handles an anonymous estimate. Nothing is persisted; guests get
// the number and the explanation only.
func (h *InsuranceHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := req.input()
	utils.Success(c, "Insurance cost estimated successfully", EstimateResponse{
		PredictedCost:     h.Estimator.Estimate(in),
		FeatureImportance: h.Estimator.FeatureImportance(),
		RiskFactors:       insurance.RiskFactors(in),
	})
}

// Predict handles an authenticated patient's estimate and stores it in the
// prediction history.
func (h *InsuranceHandler) Predict(c *gin.Context) {
	var req EstimateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	in := req.input()
	cost := h.Estimator.Estimate(in)

	prediction := models.InsurancePrediction{
		UserID:        userID,
		Age:           req.Age,
		Sex:           req.Sex,
		BMI:           req.BMI,
		Children:      req.Children,
		Smoker:        req.Smoker,
		Region:        req.Region,
		PredictedCost: cost,
	}
	if err := h.DB.Create(&prediction).Error; err != nil {
		utils.InternalServerError(c, "Failed to save prediction: "+err.Error())
		return
	}

	utils.Created(c, "Insurance cost estimated successfully", EstimateResponse{
		PredictionID:      prediction.ID,
		PredictedCost:     cost,
		FeatureImportance: h.Estimator.FeatureImportance(),
		RiskFactors:       insurance.RiskFactors(in),
	})
}

// HistoryResponse represents the prediction history with summary statistics.
type HistoryResponse struct {
	Predictions []models.InsurancePrediction `json:"predictions"`
	AvgCost     *float64                     `json:"avgCost,omitempty"`
	MinCost     *float64                     `json:"minCost,omitempty"`
	MaxCost     *float64                     `json:"maxCost,omitempty"`
}

// GetHistory handles fetching the authenticated user's prediction history,
// newest first, with min/avg/max aggregates.
func (h *InsuranceHandler) GetHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var predictions []models.InsurancePrediction
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&predictions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prediction history: "+err.Error())
		return
	}

	response := HistoryResponse{Predictions: predictions}
	if len(predictions) > 0 {
		type stats struct {
			Avg float64
			Min float64
			Max float64
		}
		var s stats
		err := h.DB.Model(&models.InsurancePrediction{}).
			Select("AVG(predicted_cost) as avg, MIN(predicted_cost) as min, MAX(predicted_cost) as max").
			Where("user_id = ?", userID).
			Scan(&s).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
			return
		}
		response.AvgCost = &s.Avg
		response.MinCost = &s.Min
		response.MaxCost = &s.Max
	}

	utils.Success(c, "Prediction history fetched successfully", response)
}

// AboutModel handles fetching the model explanation for display.
func (h *InsuranceHandler) AboutModel(c *gin.Context) {
	utils.Success(c, "Model information fetched successfully", gin.H{
		"featureImportance": h.Estimator.FeatureImportance(),
	})
}
