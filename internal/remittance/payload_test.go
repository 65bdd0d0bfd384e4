package remittance_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/remittance"
)

func sampleRequest() remittance.Request {
	return remittance.Request{
		Originator:         remittance.PartyInfo{Name: "A", Nationality: "KR", BirthDate: "1990-01-01"},
		Beneficiary:        remittance.PartyInfo{Name: "B", Nationality: "JP", BirthDate: "1991-02-02"},
		AmountKRW:          10000,
		BeneficiaryAccount: "123-456",
		CorridorBankCode:   "J_BANK",
	}
}

func fixedBuilder() remittance.Builder {
	return remittance.Builder{
		Now:     func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*60*60)) },
		NewTxID: func() string { return "7f0c7c1e-2f7e-4a43-9d1c-1c1d2b8f0e11" },
	}
}

func TestBuilder_DeterministicWithInjectedClockAndID(t *testing.T) {
	b := fixedBuilder()

	p1, err := b.Build(sampleRequest())
	require.NoError(t, err)
	p2, err := b.Build(sampleRequest())
	require.NoError(t, err)

	s1, err := p1.Serialize()
	require.NoError(t, err)
	s2, err := p2.Serialize()
	require.NoError(t, err)
	require.Equal(t, s1, s2)

	assert.Equal(t, "2025-03-01T00:30:00.000Z", p1.CreatedAt)
	assert.Equal(t, "railx-omp-v0.1", p1.Version)
}

func TestBuilder_FreshTxIDByDefault(t *testing.T) {
	b := remittance.NewBuilder()

	p1, err := b.Build(sampleRequest())
	require.NoError(t, err)
	p2, err := b.Build(sampleRequest())
	require.NoError(t, err)

	assert.NotEqual(t, p1.ISO20022.TxID, p2.ISO20022.TxID)
	assert.Len(t, p1.ISO20022.TxID, 36)
}

func TestBuilder_RegulatoryViews(t *testing.T) {
	p, err := fixedBuilder().Build(sampleRequest())
	require.NoError(t, err)

	s := p.ISO20022
	assert.Equal(t, "pacs.008.001.10", s.MessageType)
	assert.Equal(t, "A", s.Debtor.Name)
	assert.Equal(t, "KR", s.Debtor.Country)
	assert.Equal(t, "B", s.Creditor.Name)
	assert.Equal(t, "JP", s.Creditor.Country)
	assert.Equal(t, remittance.Amount{Ccy: "KRW", Amount: 10000}, s.InterbankSettlementAmount)
	assert.Equal(t, "INTERNAL_KRW", s.DebtorAccount.Type)
	assert.Equal(t, "123-456", s.CreditorAccount.AccountNumber)
	assert.Equal(t, "J_BANK", s.CorridorBankCode)
	assert.Equal(t, p.CreatedAt, s.CreationDateTime)

	tr := p.IVMS101
	require.Len(t, tr.Originator.Name, 1)
	assert.Equal(t, "A", tr.Originator.Name[0].NameIdentifier)
	assert.Equal(t, "LEGL", tr.Originator.Name[0].NameIdentifierType)
	assert.Equal(t, "1991-02-02", tr.Beneficiary.DateAndPlaceOfBirth.DateOfBirth)
	assert.Equal(t, "JP", tr.Beneficiary.NationalIdentification.CountryOfIssue)
	assert.Equal(t, "123-456", tr.BeneficiaryAccountNumber)

	assert.Equal(t, "VALID", p.ZKP.SanctionsKYC.Status)
	assert.Equal(t, []string{"OFAC", "UN", "EU"}, p.ZKP.SanctionsKYC.CheckedLists)
	assert.Equal(t, "Proof_Sanctions_KYT", p.ZKP.SanctionsKYT.Type)
}

func TestPayload_SerializedShape(t *testing.T) {
	p, err := fixedBuilder().Build(sampleRequest())
	require.NoError(t, err)
	data, err := p.Serialize()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"originator", "beneficiary", "amountKRW", "beneficiaryAccount", "corridorBankCode", "iso20022", "ivms101", "zkp", "createdAt", "version"} {
		assert.Contains(t, doc, key)
	}

	var back remittance.Payload
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *remittance.Request)
	}{
		{"missing originator name", func(r *remittance.Request) { r.Originator.Name = "" }},
		{"blank beneficiary name", func(r *remittance.Request) { r.Beneficiary.Name = "   " }},
		{"zero amount", func(r *remittance.Request) { r.AmountKRW = 0 }},
		{"negative amount", func(r *remittance.Request) { r.AmountKRW = -5 }},
		{"malformed birth date", func(r *remittance.Request) { r.Originator.BirthDate = "01/01/1990" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.mutate(&req)

			_, err := fixedBuilder().Build(req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestBuilder_EmptyBirthDateAllowed(t *testing.T) {
	req := sampleRequest()
	req.Beneficiary.BirthDate = ""

	_, err := fixedBuilder().Build(req)
	require.NoError(t, err)
}
