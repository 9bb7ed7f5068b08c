package handler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"indoor_booking/booking"
	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func GetVenues(c *fiber.Ctx) error {
	filterInput := c.Locals("input").(model.FilterVenueInput)

	db := database.DB
	query := db.Model(&model.Venue{}).Where("is_active = ?", true)

	if filterInput.Category != "" {
		query = query.Where("category = ?", filterInput.Category)
	}
	if filterInput.Search != "" {
		key := "%" + strings.ToLower(strings.TrimSpace(filterInput.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", key, key)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	var venues []model.Venue
	if err := utils.ApplyPagination(query, filterInput.Limit, filterInput.Page).
		Preload("Media").
		Order("name ASC").
		Find(&venues).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       venues,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	})
}

func GetVenueBySlug(c *fiber.Ctx) error {
	publicSlug := c.Params("slug")

	var venue model.Venue
	if err := database.DB.Preload("Media").
		Where("public_slug = ? AND is_active = ?", publicSlug, true).
		First(&venue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, venue)
}

// GetVenueAvailability returns the full slot grid of one venue and date,
// implicit FREE slots included.
func GetVenueAvailability(c *fiber.Ctx) error {
	venueId, _ := c.Locals("inputId").(int)
	date := c.Query("date")

	slots, err := coordinator.Availability(uint(venueId), date)
	if err != nil {
		var invalidDate *booking.InvalidDateError
		if errors.As(err, &invalidDate) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, invalidDate.Error(), err)
		}
		if errors.Is(err, booking.ErrVenueNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"venueId": venueId,
		"date":    date,
		"slots":   slots,
	})
}

func CreateVenue(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateVenueInput)

	var newVenue model.Venue
	copier.Copy(&newVenue, &input)
	newVenue.PublicSlug = slug.Make(input.Name)
	newVenue.IsActive = true

	for _, url := range input.ImageURLs {
		newVenue.Media = append(newVenue.Media, model.VenueMedia{Kind: "IMAGE", URL: url})
	}
	for _, url := range input.VideoURLs {
		newVenue.Media = append(newVenue.Media, model.VenueMedia{Kind: "VIDEO", URL: url})
	}

	if err := database.DB.Create(&newVenue).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, newVenue)
}

func UpdateVenue(c *fiber.Ctx) error {
	venueId, _ := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateVenueInput)

	var venue model.Venue
	if err := database.DB.First(&venue, venueId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	if input.Name != nil {
		venue.Name = *input.Name
		venue.PublicSlug = slug.Make(*input.Name)
	}
	if input.Category != nil {
		venue.Category = *input.Category
	}
	if input.PricePerHour != nil {
		venue.PricePerHour = *input.PricePerHour
	}
	if input.Description != nil {
		venue.Description = *input.Description
	}
	if input.IsActive != nil {
		venue.IsActive = *input.IsActive
	}

	if err := database.DB.Save(&venue).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, venue)
}

func DeleteVenue(c *fiber.Ctx) error {
	arrayId := c.Locals("deleteIds").(model.ArrayId)
	ids := arrayId.IDs

	for _, id := range ids {
		var venue model.Venue
		if err := database.DB.First(&venue, id).Error; err != nil {
			log.Printf("venue %d not found, skipping", id)
			continue
		}

		// Bookings keep their history, the venue just stops being offered.
		if err := database.DB.Model(&venue).Update("is_active", false).Error; err != nil {
			log.Printf("failed to deactivate venue %d: %v", id, err)
		}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "venues deactivated",
		"ids":     ids,
	})
}

// GenerateUploadSignature signs the parameters a browser needs for a direct
// upload to Cloudinary, so media files never pass through this server.
func GenerateUploadSignature(c *fiber.Ctx) error {
	type SigParams struct {
		Folder       string `json:"folder"`
		PublicID     string `json:"public_id"`
		ResourceType string `json:"resource_type"` // Parse but don't sign
	}

	var params SigParams
	if err := c.BodyParser(&params); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	timestamp := time.Now().Unix()
	timestampStr := fmt.Sprintf("%d", timestamp)

	paramMap := make(map[string]string)
	if params.Folder != "" {
		paramMap["folder"] = params.Folder
	}
	if params.PublicID != "" {
		paramMap["public_id"] = params.PublicID
	}
	paramMap["timestamp"] = timestampStr

	keys := make([]string, 0, len(paramMap))
	for k := range paramMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Raw values, no URL encoding, per Cloudinary's signing rules.
	var stringToSign strings.Builder
	for i, k := range keys {
		if i > 0 {
			stringToSign.WriteString("&")
		}
		stringToSign.WriteString(k)
		stringToSign.WriteString("=")
		stringToSign.WriteString(paramMap[k])
	}
	stringToSign.WriteString(os.Getenv("CLOUDINARY_API_SECRET"))

	h := sha1.New()
	h.Write([]byte(stringToSign.String()))
	signature := hex.EncodeToString(h.Sum(nil))

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"apiKey":    os.Getenv("CLOUDINARY_API_KEY"),
		"cloudName": os.Getenv("CLOUDINARY_CLOUD_NAME"),
	})
}

func AddVenueMedia(c *fiber.Ctx) error {
	venueId, _ := c.Locals("inputId").(int)

	var venue model.Venue
	if err := database.DB.First(&venue, venueId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	type MediaInput struct {
		Kind string `json:"kind"`
		URL  string `json:"url"`
	}
	var input MediaInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}
	if input.Kind != "IMAGE" && input.Kind != "VIDEO" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "kind must be IMAGE or VIDEO", errors.New("invalid kind"))
	}
	if input.URL == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "url is required", errors.New("missing url"))
	}

	media := model.VenueMedia{VenueId: venue.ID, Kind: input.Kind, URL: input.URL}
	if err := database.DB.Create(&media).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, media)
}

func DeleteVenueMedia(c *fiber.Ctx) error {
	arrayId := c.Locals("deleteIds").(model.ArrayId)
	ids := arrayId.IDs

	cld, err := cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to init cloudinary", err)
	}

	for _, id := range ids {
		var media model.VenueMedia
		if err := database.DB.First(&media, id).Error; err != nil {
			log.Printf("venue media %d not found, skipping", id)
			continue
		}

		if publicID := cloudinaryPublicID(media.URL); publicID != "" {
			invalidate := true
			resourceType := "image"
			if media.Kind == "VIDEO" {
				resourceType = "video"
			}
			go func(publicID, resourceType string) {
				_, err := cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
					PublicID:     publicID,
					ResourceType: resourceType,
					Invalidate:   &invalidate,
				})
				if err != nil {
					log.Printf("failed to delete cloudinary asset %s: %v", publicID, err)
				}
			}(publicID, resourceType)
		}

		if err := database.DB.Delete(&media).Error; err != nil {
			log.Printf("failed to delete venue media %d: %v", id, err)
		}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "media deleted",
		"ids":     ids,
	})
}

// cloudinaryPublicID extracts the public id from a delivery URL, empty when
// the URL is not a Cloudinary one.
func cloudinaryPublicID(url string) string {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return ""
	}
	rest := url[idx+len("/upload/"):]
	// strip version prefix like v1712345678/
	if strings.HasPrefix(rest, "v") {
		if slash := strings.Index(rest, "/"); slash > 0 {
			allDigits := true
			for _, r := range rest[1:slash] {
				if r < '0' || r > '9' {
					allDigits = false
					break
				}
			}
			if allDigits {
				rest = rest[slash+1:]
			}
		}
	}
	if dot := strings.LastIndex(rest, "."); dot > 0 {
		rest = rest[:dot]
	}
	return rest
}
