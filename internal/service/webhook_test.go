package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/billing/chapa"
	stripeclient "github.com/temaribet/temaribet/internal/billing/stripe"
	"github.com/temaribet/temaribet/internal/config"
	"github.com/temaribet/temaribet/internal/domain/deposit"
	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/httpclient"
	"github.com/temaribet/temaribet/internal/testutil"
	"github.com/temaribet/temaribet/internal/types"
)

const chapaTestSecret = "whsec_chapa_test"

// stubHTTPClient returns a canned response, standing in for the Chapa
// verification endpoint.
type stubHTTPClient struct {
	response *httpclient.Response
	err      error
}

func (c *stubHTTPClient) Send(_ context.Context, _ *httpclient.Request) (*httpclient.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService
	stub    *stubHTTPClient
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	cfg := *s.GetConfig()
	cfg.Chapa = config.ChapaConfig{
		SecretKey:     "sk_chapa_test",
		WebhookSecret: chapaTestSecret,
	}

	s.stub = &stubHTTPClient{}
	chapaClient := chapa.NewClient(&cfg, s.stub, s.GetLogger())
	stripeClient := stripeclient.NewClient(&cfg, s.GetLogger())
	s.service = NewWebhookService(testServiceParams(&s.BaseServiceTestSuite), stripeClient, chapaClient)

	profile := &student.FeeProfile{
		StudentID:       "stu_test",
		BaseMonthlyFee:  decimal.NewFromInt(300),
		Currency:        "ETB",
		EnrollmentStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().StudentRepo.(*testutil.InMemoryStudentStore).AddFeeProfile(s.GetContext(), profile))
}

func (s *WebhookServiceSuite) seedPendingChapaDeposit(txRef string, amount int64) *deposit.Deposit {
	d := &deposit.Deposit{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DEPOSIT),
		StudentID:     "stu_test",
		Amount:        amount,
		DepositStatus: types.DepositStatusPending,
		Source:        types.PaymentSourceChapa,
		Reason:        "online payment",
		TransactionID: txRef,
		PaymentDate:   time.Now().UTC(),
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().DepositRepo.Create(s.GetContext(), d))
	return d
}

func (s *WebhookServiceSuite) chapaPayload(txRef string, amount int64, status string) ([]byte, string) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":    string(types.WebhookEventTypeChapaChargeSuccess),
		"tx_ref":   txRef,
		"amount":   amount,
		"currency": "ETB",
		"status":   status,
	})
	s.NoError(err)

	mac := hmac.New(sha256.New, []byte(chapaTestSecret))
	mac.Write(payload)
	return payload, hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookServiceSuite) stubVerification(txRef string, amount int64, status string) {
	body, err := json.Marshal(map[string]interface{}{
		"message": "verified",
		"status":  "success",
		"data": map[string]interface{}{
			"amount":   amount,
			"currency": "ETB",
			"tx_ref":   txRef,
			"status":   status,
		},
	})
	s.NoError(err)
	s.stub.response = &httpclient.Response{StatusCode: 200, Body: body}
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_ApprovesWithoutSchoolHeader() {
	d := s.seedPendingChapaDeposit("tx_chapa_1", 450)
	s.stubVerification("tx_chapa_1", 450, "success")
	payload, sig := s.chapaPayload("tx_chapa_1", 450, "success")

	// Gateway callbacks arrive with no school header at all; the scope
	// must come from the deposit the tx_ref points at
	err := s.service.ProcessChapaEvent(context.Background(), payload, sig)
	s.NoError(err)

	settled, err := s.GetStores().DepositRepo.Get(s.GetContext(), d.ID)
	s.NoError(err)
	s.Equal(types.DepositStatusApproved, settled.DepositStatus)

	// The ledger rows the deposit funded carry the deposit's school
	jan, err := s.GetStores().LedgerRepo.ListByStudentMonth(s.GetContext(), "stu_test", month("2025-01"))
	s.NoError(err)
	s.Len(jan, 1)
	s.Equal(types.DefaultSchoolID, jan[0].SchoolID)
	s.Equal(d.ID, *jan[0].LinkedPaymentID)
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_RedeliveryIsNoOp() {
	d := s.seedPendingChapaDeposit("tx_chapa_2", 300)
	s.stubVerification("tx_chapa_2", 300, "success")
	payload, sig := s.chapaPayload("tx_chapa_2", 300, "success")

	s.NoError(s.service.ProcessChapaEvent(context.Background(), payload, sig))
	s.NoError(s.service.ProcessChapaEvent(context.Background(), payload, sig))

	settled, err := s.GetStores().DepositRepo.Get(s.GetContext(), d.ID)
	s.NoError(err)
	s.Equal(types.DepositStatusApproved, settled.DepositStatus)
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_UnknownTransaction() {
	s.stubVerification("tx_missing", 300, "success")
	payload, sig := s.chapaPayload("tx_missing", 300, "success")

	err := s.service.ProcessChapaEvent(context.Background(), payload, sig)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_VerifiedAmountWins() {
	d := s.seedPendingChapaDeposit("tx_chapa_3", 450)
	s.stubVerification("tx_chapa_3", 500, "success")
	payload, sig := s.chapaPayload("tx_chapa_3", 450, "success")

	s.NoError(s.service.ProcessChapaEvent(context.Background(), payload, sig))

	settled, err := s.GetStores().DepositRepo.Get(s.GetContext(), d.ID)
	s.NoError(err)
	s.Equal(int64(500), settled.Amount)
	s.Equal(types.DepositStatusApproved, settled.DepositStatus)
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_FailedVerificationRejected() {
	s.seedPendingChapaDeposit("tx_chapa_4", 300)
	s.stubVerification("tx_chapa_4", 300, "failed")
	payload, sig := s.chapaPayload("tx_chapa_4", 300, "success")

	err := s.service.ProcessChapaEvent(context.Background(), payload, sig)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *WebhookServiceSuite) TestProcessChapaEvent_BadSignature() {
	payload, _ := s.chapaPayload("tx_chapa_5", 300, "success")

	err := s.service.ProcessChapaEvent(context.Background(), payload, "deadbeef")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}
