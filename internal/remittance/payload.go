package remittance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
)

const (
	settlementMessageType = "pacs.008.001.10"
	currencyKRW           = "KRW"
	legalNameType         = "LEGL"
	birthDateLayout       = time.DateOnly
	createdAtLayout       = "2006-01-02T15:04:05.000Z07:00"
)

// Builder assembles the canonical payload. Now and NewTxID are the only
// sources of non-determinism; tests inject both to get byte-identical output.
type Builder struct {
	Now     func() time.Time
	NewTxID func() string
}

func NewBuilder() Builder {
	return Builder{
		Now:     time.Now,
		NewTxID: func() string { return uuid.NewString() },
	}
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Originator.Name) == "" || strings.TrimSpace(r.Beneficiary.Name) == "" {
		return apperr.Validation("originator and beneficiary name are required")
	}
	if r.AmountKRW <= 0 {
		return apperr.Validation("amountKRW must be a positive number")
	}
	for _, p := range []PartyInfo{r.Originator, r.Beneficiary} {
		if p.BirthDate == "" {
			continue
		}
		if _, err := time.Parse(birthDateLayout, p.BirthDate); err != nil {
			return apperr.Validation("birthDate must be formatted as YYYY-MM-DD")
		}
	}
	return nil
}

func (b Builder) Build(req Request) (Payload, error) {
	if err := req.Validate(); err != nil {
		return Payload{}, err
	}

	now := b.Now().UTC().Format(createdAtLayout)
	return Payload{
		Originator:         req.Originator,
		Beneficiary:        req.Beneficiary,
		AmountKRW:          req.AmountKRW,
		BeneficiaryAccount: req.BeneficiaryAccount,
		CorridorBankCode:   req.CorridorBankCode,
		ISO20022:           settlementView(req, b.NewTxID(), now),
		IVMS101:            travelRuleView(req),
		ZKP:                attestationView(now),
		CreatedAt:          now,
		Version:            constant.PAYLOAD_VERSION,
	}, nil
}

// Serialize is the single serialization of a payload; its output is the
// plaintext that gets sealed.
func (p Payload) Serialize() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to serialize payload")
	}
	return data, nil
}

func settlementView(req Request, txID, now string) Settlement {
	return Settlement{
		MessageType:      settlementMessageType,
		TxID:             txID,
		CreationDateTime: now,
		Debtor: SettlementParty{
			Name:      req.Originator.Name,
			Country:   req.Originator.Nationality,
			BirthDate: req.Originator.BirthDate,
		},
		Creditor: SettlementParty{
			Name:      req.Beneficiary.Name,
			Country:   req.Beneficiary.Nationality,
			BirthDate: req.Beneficiary.BirthDate,
		},
		InterbankSettlementAmount: Amount{Ccy: currencyKRW, Amount: req.AmountKRW},
		// the debtor side is always the sending bank's internal KRW account
		DebtorAccount: DebtorAccount{Type: "INTERNAL_KRW"},
		CreditorAccount: CreditorAccount{
			AccountNumber: req.BeneficiaryAccount,
			AccountType:   "BENEFICIARY",
		},
		CorridorBankCode: req.CorridorBankCode,
	}
}

func travelRuleView(req Request) TravelRule {
	return TravelRule{
		Originator:               ivmsPerson(req.Originator),
		Beneficiary:              ivmsPerson(req.Beneficiary),
		Amount:                   IVMSAmount{Currency: currencyKRW, Amount: req.AmountKRW},
		BeneficiaryAccountNumber: req.BeneficiaryAccount,
	}
}

func ivmsPerson(p PartyInfo) IVMSPerson {
	return IVMSPerson{
		Name:                   []IVMSName{{NameIdentifier: p.Name, NameIdentifierType: legalNameType}},
		DateAndPlaceOfBirth:    DateAndPlaceOfBirth{DateOfBirth: p.BirthDate},
		NationalIdentification: NationalIdentification{CountryOfIssue: p.Nationality},
	}
}

// TODO: replace the static VALID status once the sanctions proof circuit
// publishes real verification results.
func attestationView(now string) Attestation {
	return Attestation{
		SanctionsKYC: Proof{
			Type:         "Proof_Sanctions_KYC",
			Status:       "VALID",
			CheckedLists: []string{"OFAC", "UN", "EU"},
			CreatedAt:    now,
		},
		SanctionsKYT: Proof{
			Type:         "Proof_Sanctions_KYT",
			Status:       "VALID",
			CheckedLists: []string{"OFAC_ADDR", "EXCHANGE_BLACKLIST"},
			CreatedAt:    now,
		},
	}
}
