package remittance

import "time"

type PartyInfo struct {
	Name        string `json:"name" doc:"Legal name"`
	Nationality string `json:"nationality" required:"false" doc:"ISO 3166-1 alpha-2 country code" example:"KR"`
	BirthDate   string `json:"birthDate" required:"false" doc:"YYYY-MM-DD" example:"1990-01-01"`
}

// Request holds the source fields a sending bank submits. Every other part of
// the payload is derived from it.
type Request struct {
	Originator         PartyInfo `json:"originator"`
	Beneficiary        PartyInfo `json:"beneficiary"`
	AmountKRW          int64     `json:"amountKRW" doc:"Amount in KRW, must be positive"`
	BeneficiaryAccount string    `json:"beneficiaryAccount"`
	CorridorBankCode   string    `json:"corridorBankCode" example:"J_BANK"`
}

// Payload is the plaintext sealed into an envelope. Field order is the
// serialization order and must not change between releases.
type Payload struct {
	Originator         PartyInfo   `json:"originator"`
	Beneficiary        PartyInfo   `json:"beneficiary"`
	AmountKRW          int64       `json:"amountKRW"`
	BeneficiaryAccount string      `json:"beneficiaryAccount"`
	CorridorBankCode   string      `json:"corridorBankCode"`
	ISO20022           Settlement  `json:"iso20022"`
	IVMS101            TravelRule  `json:"ivms101"`
	ZKP                Attestation `json:"zkp"`
	CreatedAt          string      `json:"createdAt"`
	Version            string      `json:"version"`
}

// Settlement is a pacs.008 style view of the transfer.
type Settlement struct {
	MessageType               string          `json:"messageType"`
	TxID                      string          `json:"txId"`
	CreationDateTime          string          `json:"creationDateTime"`
	Debtor                    SettlementParty `json:"debtor"`
	Creditor                  SettlementParty `json:"creditor"`
	InterbankSettlementAmount Amount          `json:"interbankSettlementAmount"`
	DebtorAccount             DebtorAccount   `json:"debtorAccount"`
	CreditorAccount           CreditorAccount `json:"creditorAccount"`
	CorridorBankCode          string          `json:"corridorBankCode"`
}

type SettlementParty struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	BirthDate string `json:"birthDate"`
}

type Amount struct {
	Ccy    string `json:"ccy"`
	Amount int64  `json:"amount"`
}

type DebtorAccount struct {
	Type string `json:"type"`
}

type CreditorAccount struct {
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
}

// TravelRule is an IVMS101 style identity view.
type TravelRule struct {
	Originator               IVMSPerson `json:"originator"`
	Beneficiary              IVMSPerson `json:"beneficiary"`
	Amount                   IVMSAmount `json:"amount"`
	BeneficiaryAccountNumber string     `json:"beneficiaryAccountNumber"`
}

type IVMSPerson struct {
	Name                   []IVMSName             `json:"name"`
	DateAndPlaceOfBirth    DateAndPlaceOfBirth    `json:"dateAndPlaceOfBirth"`
	NationalIdentification NationalIdentification `json:"nationalIdentification"`
}

type IVMSName struct {
	NameIdentifier     string `json:"nameIdentifier"`
	NameIdentifierType string `json:"nameIdentifierType"`
}

type DateAndPlaceOfBirth struct {
	DateOfBirth string `json:"dateOfBirth"`
}

type NationalIdentification struct {
	CountryOfIssue string `json:"countryOfIssue"`
}

type IVMSAmount struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// Attestation carries the compliance proofs attached to a transfer.
type Attestation struct {
	SanctionsKYC Proof `json:"sanctionsKyc"`
	SanctionsKYT Proof `json:"sanctionsKyt"`
}

type Proof struct {
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	CheckedLists []string `json:"checkedLists"`
	CreatedAt    string   `json:"createdAt"`
}

// Receipt is returned by the write path. The caller anchors BlobHash and
// KeyCommitment on the ledger, addressed to DestinationIdentity.
type Receipt struct {
	DestinationIdentity string    `json:"destinationIdentity" doc:"Ledger address of the receiving bank"`
	BlobHash            string    `json:"blobHash" doc:"Keccak-256 of the encrypted blob, 0x hex"`
	KeyCommitment       string    `json:"keyCommitment" doc:"Keccak-256 of the wrapped data key, 0x hex"`
	BlobLocation        string    `json:"-"`
	SealedAt            time.Time `json:"-"`
}
