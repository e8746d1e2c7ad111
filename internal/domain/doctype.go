package domain

import "strings"

type DocumentType string

const (
	DocTypeAll             DocumentType = "all"
	DocTypeInitialPetition DocumentType = "initial-petition"
	DocTypePetition        DocumentType = "petition"
	DocTypeIdentification  DocumentType = "identification"
	DocTypeEvidence        DocumentType = "evidence"
	DocTypeCertificate     DocumentType = "certificate"
	DocTypeOrder           DocumentType = "order"
	DocTypeRuling          DocumentType = "ruling"
	DocTypeJudgment        DocumentType = "judgment"
	DocTypeOpinion         DocumentType = "appellate-opinion"
	DocTypePowerOfAttorney DocumentType = "power-of-attorney"
	DocTypeOther           DocumentType = "other"
)

// documentTypeCodes maps each filter to the numeric value the portal's
// document form expects. "0" means no filter.
var documentTypeCodes = map[DocumentType]string{
	DocTypeAll:             "0",
	DocTypeInitialPetition: "12",
	DocTypePetition:        "36",
	DocTypeIdentification:  "52",
	DocTypeEvidence:        "53",
	DocTypeCertificate:     "57",
	DocTypeOrder:           "63",
	DocTypeRuling:          "64",
	DocTypeJudgment:        "62",
	DocTypeOpinion:         "74",
	DocTypePowerOfAttorney: "161",
	DocTypeOther:           "93",
}

var documentTypeOrder = []DocumentType{
	DocTypeAll,
	DocTypeInitialPetition,
	DocTypePetition,
	DocTypeIdentification,
	DocTypeEvidence,
	DocTypeCertificate,
	DocTypeOrder,
	DocTypeRuling,
	DocTypeJudgment,
	DocTypeOpinion,
	DocTypePowerOfAttorney,
	DocTypeOther,
}

func (d DocumentType) FormCode() string {
	if code, ok := documentTypeCodes[d]; ok {
		return code
	}

	return documentTypeCodes[DocTypeAll]
}

func (d DocumentType) Known() bool {
	_, ok := documentTypeCodes[d]
	return ok
}

func ParseDocumentType(raw string) DocumentType {
	d := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if d == "" {
		return DocTypeAll
	}

	return d
}

func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypeOrder))
	copy(out, documentTypeOrder)
	return out
}
