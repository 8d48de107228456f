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
	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/database"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/notifications"
)

// GenerateApprovalCertificate renders the "registered parking spot"
// certificate for a freshly approved listing, uploads it and emails the
// owner. Runs in a goroutine off the approval handler; failures only log.
func GenerateApprovalCertificate(listing models.Listing, owner models.User) {
	if listing.CertificateURL != nil {
		return
	}

	htmlData, err := generateCertificateHTML(listing, owner)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadCertificate(pdfBytes, listing.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload certificate: %v", err)
		return
	}

	if err := database.DB.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("certificate_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to store certificate URL for listing %s: %v", listing.ID, err)
		return
	}

	go notifications.SendEmail(
		owner.FullName,
		owner.Email,
		"Your Parking Spot is Approved!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>Your spot <b>%s</b> (%s) has been approved and is now visible to renters.</p><p><a href='%s'>Download your registration certificate</a>.</p>", listing.Title, listing.ReferenceCode, uploadURL),
	)

	log.Printf("✅ Generated and uploaded certificate for listing %s.", listing.ReferenceCode)
}

func generateCertificateHTML(listing models.Listing, owner models.User) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		OwnerName     string
		ListingTitle  string
		ReferenceCode string
		ApprovalDate  string
	}{
		OwnerName:     owner.FullName,
		ListingTitle:  listing.Title,
		ReferenceCode: listing.ReferenceCode,
		ApprovalDate:  time.Now().Format("January 2, 2006"),
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

func uploadCertificate(fileBytes []byte, listingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", listingID, uuid.New().String()),
		Folder:       "park_spot_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
