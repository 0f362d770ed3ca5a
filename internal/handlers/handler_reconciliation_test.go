package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconciliationHandlerTestSuite struct {
	handlerSuite
}

func TestReconciliationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationHandlerTestSuite))
}

var businessDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func sampleReconciliation() *domain.Reconciliation {
	counted := decimal.RequireFromString("95")
	variance := decimal.RequireFromString("-5")
	return &domain.Reconciliation{
		ReconciliationID:      "rec-1",
		AccountID:             testAccountID,
		BusinessDate:          businessDay,
		OpenedAt:              businessDay.Add(8 * time.Hour),
		OpeningSystemBalance:  decimal.NewFromInt(100),
		OpeningCountedBalance: &counted,
		OpeningVariance:       &variance,
	}
}

func (suite *ReconciliationHandlerTestSuite) TestOpen_AcceptsDateOnly() {
	suite.reconciliation.On("Open", mock.Anything,
		mock.MatchedBy(func(req dto.ReconciliationRequest) bool {
			return req.FinancialAccountID == testAccountID &&
				req.BusinessDateUTC.Equal(businessDay) &&
				req.CountedBalance != nil && req.CountedBalance.Equal(decimal.NewFromInt(95))
		}), testUserID).Return(sampleReconciliation(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/reconciliations/open",
		`{"financialAccountId":"`+testAccountID+`","businessDateUtc":"2024-03-04","countedBalance":"95"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ReconciliationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2024-03-04", resp.BusinessDateUTC)
	suite.Require().NotNil(resp.OpeningVariance)
	suite.True(resp.OpeningVariance.Equal(decimal.NewFromInt(-5)))
}

func (suite *ReconciliationHandlerTestSuite) TestOpen_TruncatesInstantToDay() {
	suite.reconciliation.On("Open", mock.Anything,
		mock.MatchedBy(func(req dto.ReconciliationRequest) bool {
			return req.BusinessDateUTC.Equal(businessDay)
		}), testUserID).Return(sampleReconciliation(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/reconciliations/open",
		`{"financialAccountId":"`+testAccountID+`","businessDateUtc":"2024-03-04T21:30:00Z"}`)

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestOpen_MissingDate() {
	w := suite.do(http.MethodPost, "/api/v1/reconciliations/open", `{"financialAccountId":"`+testAccountID+`"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "businessDateUtc is required")
}

func (suite *ReconciliationHandlerTestSuite) TestOpen_MalformedDate() {
	w := suite.do(http.MethodPost, "/api/v1/reconciliations/open",
		`{"financialAccountId":"`+testAccountID+`","businessDateUtc":"04/03/2024"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestOpen_AlreadyOpened() {
	suite.reconciliation.On("Open", mock.Anything, mock.Anything, testUserID).
		Return(nil, apperrors.NewConflictError("business day already opened")).Once()

	w := suite.do(http.MethodPost, "/api/v1/reconciliations/open",
		`{"financialAccountId":"`+testAccountID+`","businessDateUtc":"2024-03-04"}`)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestClose_NeverOpened() {
	suite.reconciliation.On("Close", mock.Anything, mock.Anything, testUserID).
		Return(nil, apperrors.NewNotFoundError("reconciliation", testAccountID)).Once()

	w := suite.do(http.MethodPost, "/api/v1/reconciliations/close",
		`{"financialAccountId":"`+testAccountID+`","businessDateUtc":"2024-03-04"}`)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestCloseAll_ReportsSkipped() {
	result := &domain.BulkReconciliationResult{
		BusinessDate: businessDay,
		Processed:    []domain.Reconciliation{*sampleReconciliation()},
		Skipped:      []domain.SkippedAccount{{AccountID: "other", Reason: "not opened"}},
	}
	suite.reconciliation.On("CloseAll", mock.Anything, businessDay, testUserID).Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/reconciliations/close-all", `{"businessDateUtc":"2024-03-04"}`)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BulkReconciliationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Processed, 1)
	suite.Len(resp.Skipped, 1)
}

func (suite *ReconciliationHandlerTestSuite) TestList() {
	suite.reconciliation.On("ListForDay", mock.Anything, businessDay).
		Return([]domain.Reconciliation{*sampleReconciliation()}, nil).Once()
	suite.reconciliation.On("Get", mock.Anything, testAccountID, businessDay).
		Return(sampleReconciliation(), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reconciliations?businessDateUtc=2024-03-04", "")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/reconciliations?businessDateUtc=2024-03-04&financialAccountId="+testAccountID, "")
	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.ReconciliationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)

	w = suite.do(http.MethodGet, "/api/v1/reconciliations", "")
	suite.Equal(http.StatusBadRequest, w.Code)
}
