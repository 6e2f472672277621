package endpoint

import (
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
)

// ListTherapyTypes godoc
// @Summary      List therapy types
// @Description  The catalogue of therapies with their default duration and session count
// @Tags         Therapy
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]model.TherapyType} "Therapy types retrieved"
// @Router       /therapy-type [get]
func ListTherapyTypes(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var types []model.TherapyType
	if err := db.Order("code ASC").Find(&types).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve therapy types", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapy types retrieved", Data: types})
}
