package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aydinov/lifecoach/internal/db"
)

type waterBody struct {
	AmountML int `json:"amount_ml" binding:"required"`
}

func addWater(c *gin.Context) {
	var body waterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	log, err := db.AddWaterLog(body.AmountML)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func waterToday(c *gin.Context) {
	logs, total, err := db.TodayWaterLogs()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"today_total": total,
		"entries":     logs,
	})
}

func waterHistory(c *gin.Context) {
	logs, err := db.WaterHistory()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func deleteWater(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := db.DeleteWaterLog(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
