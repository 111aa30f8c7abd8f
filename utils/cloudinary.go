package utils

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"

	"tourly/config"
)

// Cloudinary initializes the Cloudinary client from AppConfig.
func Cloudinary() (*cloudinary.Cloudinary, error) {
	cloudName := config.AppConfig.CloudinaryCloudName
	apiKey := config.AppConfig.CloudinaryAPIKey
	apiSecret := config.AppConfig.CloudinaryAPISecret

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
