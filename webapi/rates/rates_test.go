package rates_test

import (
	"testing"

	"github.com/amirasaad/remitquote/pkg/provider"
	"github.com/amirasaad/remitquote/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type RatesTestSuite struct {
	testutils.APITestSuite
}

func TestRatesTestSuite(t *testing.T) {
	suite.Run(t, new(RatesTestSuite))
}

type statusResponse struct {
	Status int                 `json:"status"`
	Data   provider.RateStatus `json:"data"`
}

func (s *RatesTestSuite) TestStatus() {
	s.Rates.SetStale(true)

	resp := s.MakeRequest(fiber.MethodGet, "/api/rates/status", "")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	body := testutils.DecodeBody[statusResponse](&s.APITestSuite, resp)
	s.Equal("static", body.Data.Source)
	s.True(body.Data.IsLive)
	s.True(body.Data.Stale)
	s.Equal(9, body.Data.Currencies)
	s.NotNil(body.Data.FetchedAt)
	s.Nil(body.Data.LastFailedAt)
}
