package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingHandlerTestSuite struct {
	handlerSuite
}

func TestReportingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingHandlerTestSuite))
}

func flowsOnlyStatement() *domain.CashFlowStatement {
	return &domain.CashFlowStatement{
		StartUTC:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndUTC:      time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		CompanyWide: true,
	}
}

func rangeQuery(path string, extra url.Values) string {
	q := url.Values{}
	q.Set("startUtc", "2024-03-01T00:00:00Z")
	q.Set("endUtc", "2024-03-02T00:00:00Z")
	for k, v := range extra {
		q[k] = v
	}
	return path + "?" + q.Encode()
}

func (suite *ReportingHandlerTestSuite) TestToday_DefaultsToApprox() {
	suite.reporting.On("TodayCashFlow", mock.Anything, (*string)(nil), true).Return(flowsOnlyStatement(), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cashflow/company/today", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CashFlowResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("FLOWS_ONLY", resp.Basis)
}

func (suite *ReportingHandlerTestSuite) TestToday_SingleAccountExplicitFlag() {
	suite.reporting.On("TodayCashFlow", mock.Anything,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == testAccountID }), false).
		Return(flowsOnlyStatement(), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cashflow/company/today?includeApproxBalances=false&financialAccountId="+testAccountID, "")

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestRangeAndStatementDefaults() {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		path       string
		wantApprox bool
	}{
		{"/api/v1/cashflow/company/range", true},
		{"/api/v1/cashflow/company/statement", false},
	}
	for _, tt := range tests {
		suite.Run(tt.path, func() {
			suite.reporting.On("ComposeCashFlow", mock.Anything,
				mock.MatchedBy(func(q portssvc.CashFlowQuery) bool {
					return q.StartUTC.Equal(start) && q.EndUTC.Equal(end) && q.AllowApprox == tt.wantApprox && q.AccountID == nil
				})).Return(flowsOnlyStatement(), nil).Once()

			w := suite.do(http.MethodGet, rangeQuery(tt.path, nil), "")

			suite.Equal(http.StatusOK, w.Code)
		})
	}
}

func (suite *ReportingHandlerTestSuite) TestRange_RequiresBothBounds() {
	w := suite.do(http.MethodGet, "/api/v1/cashflow/company/range?startUtc=2024-03-01T00:00:00Z", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "startUtc and endUtc are required")
}

func (suite *ReportingHandlerTestSuite) TestRange_RejectsNonUTCOffset() {
	q := url.Values{}
	q.Set("startUtc", "2024-03-01T00:00:00+02:00")
	q.Set("endUtc", "2024-03-02T00:00:00Z")

	w := suite.do(http.MethodGet, "/api/v1/cashflow/company/range?"+q.Encode(), "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "startUtc")
	suite.Contains(w.Body.String(), "Must be a UTC instant")
}

func (suite *ReportingHandlerTestSuite) TestRange_InvertedRangeIsBadRequest() {
	suite.reporting.On("ComposeCashFlow", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("startUtc must be before endUtc")).Once()

	w := suite.do(http.MethodGet, rangeQuery("/api/v1/cashflow/company/statement", nil), "")

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestRange_ExactBasis() {
	opening := decimal.NewFromInt(100)
	closing := decimal.NewFromInt(130)
	stmt := flowsOnlyStatement()
	stmt.Opening = &opening
	stmt.Closing = &closing
	suite.reporting.On("ComposeCashFlow", mock.Anything, mock.Anything).Return(stmt, nil).Once()

	w := suite.do(http.MethodGet, rangeQuery("/api/v1/cashflow/company/statement", url.Values{"includeApproxBalances": {"true"}}), "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CashFlowResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("EXACT", resp.Basis)
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet() {
	tests := []struct {
		name         string
		difference   decimal.Decimal
		wantBalanced bool
	}{
		{"balanced", decimal.Zero, true},
		{"difference reported", decimal.NewFromInt(12), false},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.reporting.On("BalanceSheet", mock.Anything).
				Return(&domain.BalanceSheet{AsOf: time.Now().UTC(), Difference: tt.difference}, nil).Once()

			w := suite.do(http.MethodGet, "/api/v1/balancesheet/today", "")

			suite.Equal(http.StatusOK, w.Code)
			var resp dto.BalanceSheetResponse
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			suite.Equal(tt.wantBalanced, resp.Balanced)
			suite.True(resp.Difference.Equal(tt.difference))
		})
	}
}
