package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// GenerateSessionReceipt renders a PDF receipt for a completed booking and
// attaches its URL to the session record. Runs async after completion;
// failures are logged and never affect the booking itself.
func GenerateSessionReceipt(booking models.Booking) {
	var session models.Session
	if err := database.DB.First(&session, "booking_id = ?", booking.ID).Error; err != nil {
		log.Printf("No session found for booking %s, skipping receipt", booking.ID)
		return
	}
	if session.ReceiptURL != nil {
		return
	}

	var seekerProfile, providerProfile models.Profile
	database.DB.First(&seekerProfile, "user_id = ?", booking.SeekerID)
	database.DB.First(&providerProfile, "user_id = ?", booking.ProviderID)

	htmlData, err := generateReceiptHTML(seekerProfile.FullName, providerProfile.FullName, booking)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadReceiptToCloudinary(pdfBytes, booking.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	session.ReceiptURL = &uploadURL
	if err := database.DB.Save(&session).Error; err != nil {
		log.Printf("🔥 Failed to save receipt URL for booking %s: %v", booking.ID, err)
		return
	}
	log.Printf("✅ Generated receipt for booking %s", booking.ID)
}

func generateReceiptHTML(seekerName, providerName string, booking models.Booking) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		SeekerName   string
		ProviderName string
		SessionDate  string
		Amount       int64
		BookingID    string
	}{
		SeekerName:   seekerName,
		ProviderName: providerName,
		SessionDate:  booking.StartTime.Format("January 2, 2006"),
		Amount:       booking.Amount,
		BookingID:    booking.ID.String(),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceiptToCloudinary(pdfBytes []byte, bookingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", fmt.Errorf("failed to initialize Cloudinary: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := cld.Upload.Upload(ctx, bytes.NewReader(pdfBytes), uploader.UploadParams{
		Folder:   "consult_marketplace_receipts",
		PublicID: fmt.Sprintf("receipt_%s", bookingID),
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}
