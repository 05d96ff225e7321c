package controllers

import (
	"errors"
	"strconv"

	"habitat/backend/config"
	"habitat/backend/models"
	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FriendsController is a passthrough over the social tables; the
// friend-stats view reuses the same statistics services as the owner's
// own views.
type FriendsController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Streaks   *services.StreakService
	Snapshots *services.SnapshotService
}

func NewFriendsController(db *gorm.DB, cfg *config.Config) *FriendsController {
	return &FriendsController{
		DB:        db,
		Cfg:       cfg,
		Streaks:   services.NewStreakService(db),
		Snapshots: services.NewSnapshotService(db),
	}
}

func (fc *FriendsController) GetFriends(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var friends []models.Friend
	if err := fc.DB.
		Where("sender_id = ? AND mutual = ?", userID, true).
		Find(&friends).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var requests []models.Friend
	if err := fc.DB.
		Where("receiver_id = ? AND mutual = ?", userID, false).
		Find(&requests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"friends":  friends,
		"requests": requests,
	})
}

func (fc *FriendsController) SendRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type RequestInput struct {
		Username string `json:"username"`
	}
	var input RequestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var receiver models.User
	if err := fc.DB.Where("username = ?", input.Username).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if receiver.ID == userID {
		return utils.BadRequest(c, "Cannot befriend yourself")
	}

	request := models.Friend{SenderID: userID, ReceiverID: receiver.ID}
	if err := fc.DB.Create(&request).Error; err != nil {
		return utils.InternalServerError(c, "Could not create friend request")
	}
	return utils.Created(c, request)
}

// AcceptRequest marks the pending row mutual and creates the reverse
// direction.
func (fc *FriendsController) AcceptRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	senderID, err := strconv.Atoi(c.Params("id"))
	if err != nil || senderID <= 0 {
		return utils.BadRequest(c, "Invalid sender ID")
	}

	var request models.Friend
	err = fc.DB.
		Where("sender_id = ? AND receiver_id = ? AND mutual = ?", senderID, userID, false).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Friend request not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("mutual", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.Friend{
			SenderID:   userID,
			ReceiverID: uint(senderID),
			Mutual:     true,
		}).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not accept friend request")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Friend request accepted"})
}

// GetFriendStats exposes a friend's streak and daily snapshot. Only
// mutual friends may see each other's numbers.
func (fc *FriendsController) GetFriendStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, fc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	friendID, err := strconv.Atoi(c.Params("id"))
	if err != nil || friendID <= 0 {
		return utils.BadRequest(c, "Invalid friend ID")
	}

	var link models.Friend
	err = fc.DB.
		Where("sender_id = ? AND receiver_id = ? AND mutual = ?", userID, friendID, true).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Forbidden(c, "Not friends with this user")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	streak, err := fc.Streaks.GetOrCompute(uint(friendID))
	if err != nil {
		return serviceError(c, err)
	}
	snapshot, err := fc.Snapshots.GetOrCompute(uint(friendID), utils.Today())
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"friend_id":         friendID,
		"streak":            streak.CurrentStreak,
		"longest_streak":    streak.LongestStreak,
		"completion_rate":   snapshot.CompletionRate,
		"total_completions": snapshot.TotalCompletions,
		"active_habits":     snapshot.ActiveHabits,
	})
}
