package helper

import (
	"log"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
)

// InitCloudinary builds the client the gallery uploads go through. The
// credentials are required at boot, a missing secret would otherwise only
// surface on the first admin upload.
func InitCloudinary() *cloudinary.Cloudinary {
	cld, err := cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
	if err != nil {
		log.Fatalf("Cloudinary init failed: %v", err)
	}
	// gallery rows store the https URL
	cld.Config.URL.Secure = true
	return cld
}
