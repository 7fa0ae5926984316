package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
)

const defaultCashfreeBaseURL = "https://api.cashfree.com/pg"

type CreateOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       OrderMeta       `json:"order_meta"`
}

type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type OrderMeta struct {
	NotifyURL string `json:"notify_url"`
}

type CreateOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

func cashfreeBaseURL() string {
	if base := config.Config("CASHFREE_BASE_URL"); base != "" {
		return base
	}
	return defaultCashfreeBaseURL
}

// CreateOrder registers a payment order with the gateway and returns the
// session the frontend uses to collect payment.
func CreateOrder(orderID string, amount int64, customerID, customerEmail, customerPhone string) (*CreateOrderResponse, error) {
	notifyURL := config.Config("WEBHOOK_BASE_URL") + "/api/v1/payments/webhook"

	payload := CreateOrderRequest{
		OrderID:       orderID,
		OrderAmount:   float64(amount),
		OrderCurrency: "INR",
		CustomerDetails: CustomerDetails{
			CustomerID:    customerID,
			CustomerEmail: customerEmail,
			CustomerPhone: customerPhone,
		},
		OrderMeta: OrderMeta{NotifyURL: notifyURL},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %v", err)
	}

	req, err := http.NewRequest("POST", cashfreeBaseURL()+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("x-client-id", config.Config("CASHFREE_CLIENT_ID"))
	req.Header.Set("x-client-secret", config.Config("CASHFREE_CLIENT_SECRET"))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send order request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Cashfree API Error: %s", string(respBody))
		return nil, fmt.Errorf("cashfree returned non-200 status: %d", resp.StatusCode)
	}

	var orderResp CreateOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %v", err)
	}

	return &orderResp, nil
}

// VerifyWebhookSignature checks the gateway's HMAC over timestamp+rawBody
// against the shared webhook secret. A failed check means the delivery must
// be rejected before any state is touched.
func VerifyWebhookSignature(rawBody []byte, signature, timestamp string) bool {
	secret := config.Config("CASHFREE_WEBHOOK_SECRET")
	return verifySignatureWithSecret(rawBody, signature, timestamp, secret)
}

func verifySignatureWithSecret(rawBody []byte, signature, timestamp, secret string) bool {
	if secret == "" || signature == "" || timestamp == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

type pennyDropRequest struct {
	BankAccount string `json:"bank_account"`
	IFSC        string `json:"ifsc"`
	Amount      int64  `json:"amount"`
	Remarks     string `json:"remarks"`
}

// InitiatePennyDrop asks the gateway to push a small verification deposit to
// a provider's bank account. Amount is in paise.
func InitiatePennyDrop(accountNumber, ifsc string, amount int64) error {
	payload := pennyDropRequest{
		BankAccount: accountNumber,
		IFSC:        ifsc,
		Amount:      amount,
		Remarks:     "Account verification deposit",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal penny drop payload: %v", err)
	}

	req, err := http.NewRequest("POST", cashfreeBaseURL()+"/payouts/transfers", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create penny drop request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("x-client-id", config.Config("CASHFREE_CLIENT_ID"))
	req.Header.Set("x-client-secret", config.Config("CASHFREE_CLIENT_SECRET"))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send penny drop request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("penny drop transfer failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
