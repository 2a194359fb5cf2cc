package controllers

import (
	"portfolioadvisor/services"
	"portfolioadvisor/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PreferenceControllerI interface {
	GetPreference(ctx *gin.Context)
	PutPreference(ctx *gin.Context)
}

type preferenceController struct {
	prefs services.PreferenceServiceI
}

func NewPreferenceController(prefs services.PreferenceServiceI) PreferenceControllerI {
	return &preferenceController{prefs: prefs}
}

func (p *preferenceController) GetPreference(ctx *gin.Context) {
	pref, err := p.prefs.GetPreference(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error fetching preferences", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching preferences"})
		return
	}
	if pref == nil {
		ctx.JSON(404, gin.H{"error": "No preferences set"})
		return
	}
	ctx.JSON(200, pref)
}

func (p *preferenceController) PutPreference(ctx *gin.Context) {
	var pref types.InvestmentPreference
	if err := ctx.ShouldBindJSON(&pref); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	pref.UserID = userID(ctx)

	if err := p.prefs.UpsertPreference(ctx, pref); err != nil {
		zap.L().Error("Error saving preferences", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while saving preferences"})
		return
	}
	ctx.JSON(200, gin.H{"message": "Preferences saved"})
}
