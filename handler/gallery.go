package handler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

// GenerateSignature signs upload parameters so the frontend can push files
// straight to Cloudinary without routing bytes through this server.
func GenerateSignature(c *fiber.Ctx) error {
	type SigParams struct {
		Folder       string `json:"folder"`
		PublicID     string `json:"public_id"`
		ResourceType string `json:"resource_type"` // parsed but never signed
	}

	var params SigParams
	if err := c.BodyParser(&params); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid signature params", err)
	}

	timestamp := time.Now().Unix()

	paramMap := map[string]string{
		"timestamp": fmt.Sprintf("%d", timestamp),
	}
	if params.Folder != "" {
		paramMap["folder"] = params.Folder
	}
	if params.PublicID != "" {
		paramMap["public_id"] = params.PublicID
	}

	keys := make([]string, 0, len(paramMap))
	for k := range paramMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// raw values, no URL encoding
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

// UploadGalleryImages takes multipart files and stores them on Cloudinary.
// Images with an eventId land in that event's gallery, others in the venue's
// general gallery.
func UploadGalleryImages(c *fiber.Ctx) error {
	cld, ok := c.Locals("cld").(*cloudinary.Cloudinary)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Cloudinary client missing", nil)
	}

	var eventID *uint
	if raw := c.FormValue("eventId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
		}
		var event model.Event
		if err := database.DB.First(&event, id).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.MSG_EVENT_NOT_FOUND, err)
		}
		eventID = &event.ID
	}
	caption := c.FormValue("caption")

	form, err := c.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Multipart form required", err)
	}
	files := form.File["images"]
	if len(files) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No images in request", nil)
	}

	var created []model.GalleryImage
	var failed []fiber.Map

	for idx, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
			failed = append(failed, fiber.Map{
				"filename": file.Filename,
				"error":    "Only JPG, PNG and WEBP are supported",
			})
			continue
		}
		if file.Size > 5*1024*1024 {
			failed = append(failed, fiber.Map{
				"filename": file.Filename,
				"error":    "File exceeds 5MB",
			})
			continue
		}

		f, err := file.Open()
		if err != nil {
			failed = append(failed, fiber.Map{
				"filename": file.Filename,
				"error":    "Could not open file",
			})
			continue
		}

		publicID := fmt.Sprintf("gallery_%d_%d", time.Now().UnixNano(), idx)
		uploadResult, err := cld.Upload.Upload(c.Context(), f, uploader.UploadParams{
			Folder:       "somnus/gallery",
			PublicID:     publicID,
			ResourceType: "image",
		})
		f.Close()

		if err != nil {
			failed = append(failed, fiber.Map{
				"filename": file.Filename,
				"error":    "Cloudinary upload failed: " + err.Error(),
			})
			continue
		}

		image := model.GalleryImage{
			EventID:  eventID,
			Url:      uploadResult.SecureURL,
			PublicID: uploadResult.PublicID,
			Caption:  caption,
		}
		if err := database.DB.Create(&image).Error; err != nil {
			cld.Upload.Destroy(context.Background(), uploader.DestroyParams{PublicID: uploadResult.PublicID})
			failed = append(failed, fiber.Map{
				"filename": file.Filename,
				"error":    "Database save failed",
			})
			continue
		}

		created = append(created, image)
	}

	response := fiber.Map{
		"message":       fmt.Sprintf("Uploaded %d/%d images", len(created), len(files)),
		"uploaded":      created,
		"failed_files":  failed,
		"success_count": len(created),
		"failed_count":  len(failed),
	}
	if len(created) == 0 && len(failed) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(response)
	}
	return c.JSON(response)
}

// GetGallery lists images, newest first. ?eventId filters to one event,
// ?general=true returns only unattached venue images.
func GetGallery(c *fiber.Ctx) error {
	query := database.DB.Model(&model.GalleryImage{}).Order("sort_order ASC, id DESC")

	if raw := c.Query("eventId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, err)
		}
		query = query.Where("event_id = ?", id)
	} else if c.Query("general") == "true" {
		query = query.Where("event_id IS NULL")
	}

	var images []model.GalleryImage
	if err := query.Find(&images).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, images)
}

// UpdateGalleryImage edits the caption or sort position of one image.
func UpdateGalleryImage(c *fiber.Ctx) error {
	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, nil)
	}

	type UpdateInput struct {
		Caption   *string `json:"caption"`
		SortOrder *int    `json:"sortOrder"`
	}
	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input", err)
	}

	var image model.GalleryImage
	if err := database.DB.First(&image, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Image not found", err)
	}

	updates := map[string]interface{}{}
	if input.Caption != nil {
		updates["caption"] = *input.Caption
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&image).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, image)
}

// DeleteGalleryImages removes images from Cloudinary and the database.
func DeleteGalleryImages(c *fiber.Ctx) error {
	cld, ok := c.Locals("cld").(*cloudinary.Cloudinary)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Cloudinary client missing", nil)
	}

	var body model.ArrayId
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input", err)
	}
	if len(body.IDs) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No ids in request", nil)
	}

	deleted := 0
	for _, id := range body.IDs {
		var image model.GalleryImage
		if err := database.DB.First(&image, id).Error; err != nil {
			continue
		}
		if image.PublicID != "" {
			cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
				PublicID: image.PublicID,
			})
		}
		if err := database.DB.Delete(&image).Error; err == nil {
			deleted++
		}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"deleted": deleted,
	})
}
