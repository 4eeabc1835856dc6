package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/onebyte2016/alx-travel-app-0x03/configs"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"gorm.io/gorm"
)

// GeneratePaymentReceipt renders a PDF receipt for a completed payment and
// stores its URL on the record. Best-effort and idempotent: a payment that
// already has a receipt is left alone, and any failure only logs.
func GeneratePaymentReceipt(db *gorm.DB, payment *models.Payment) {
	if payment.Status != models.PaymentStatusCompleted || payment.ReceiptURL != nil {
		return
	}

	htmlData, err := generateReceiptHTML(payment)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML for %s: %v", payment.TxRef, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for %s: %v", payment.TxRef, err)
		return
	}

	uploadURL, err := uploadReceiptToCloudinary(pdfBytes, payment.TxRef)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for %s: %v", payment.TxRef, err)
		return
	}

	if err := db.Model(payment).Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to save receipt URL for %s: %v", payment.TxRef, err)
		return
	}
	payment.ReceiptURL = &uploadURL
	log.Printf("✅ Generated receipt for payment %s", payment.TxRef)
}

func generateReceiptHTML(payment *models.Payment) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	verifiedAt := time.Now()
	if payment.VerifiedAt != nil {
		verifiedAt = *payment.VerifiedAt
	}

	data := struct {
		CustomerName     string
		BookingReference string
		TxRef            string
		Amount           string
		PaidAt           string
	}{
		CustomerName:     payment.User.FullName(),
		BookingReference: payment.Booking.Reference,
		TxRef:            payment.TxRef,
		Amount:           fmt.Sprintf("%.2f %s", payment.Amount, payment.Currency),
		PaidAt:           verifiedAt.Format("January 2, 2006"),
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

func uploadReceiptToCloudinary(fileBytes []byte, txRef string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", txRef, uuid.New().String()),
		Folder:       "travel_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
