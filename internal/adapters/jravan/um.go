package jravan

import (
	"strings"

	"github.com/okian/jvrace/internal/domain/model"
)

// UM record layout.
const (
	UMRecordLen       = 1609
	umTag             = "UM"
	umActiveKubun     = "0"
	trainerCodeLen    = 5
	westTrainerPrefix = 10
)

var ( //nolint:gochecknoglobals // fixed record layout
	umTagField    = field{0, 2}
	umKetto       = field{11, 10}
	umDelKubun    = field{21, 1}
	umRegDate     = field{22, 8}
	umDelDate     = field{30, 8}
	umBirthDate   = field{38, 8}
	umName        = field{46, 36}
	umNameKana    = field{82, 36}
	umNameEng     = field{118, 60}
	umSex         = field{200, 1}
	umTozai       = field{849, 1}
	umTrainerCode = field{850, 5}
	umTrainerName = field{855, 8}
	umBreederName = field{920, 40}
	umOwnerName   = field{970, 44}
)

// DecodeUM decodes a horse master record starting at offset.
// Rejections wrap ErrSkip.
func DecodeUM(buf []byte, offset int) (model.HorseMaster, error) {
	if offset < 0 || len(buf)-offset < UMRecordLen {
		return model.HorseMaster{}, ErrTruncated
	}
	rec := buf[offset : offset+UMRecordLen]

	if string(umTagField.bytes(rec)) != umTag {
		return model.HorseMaster{}, ErrRecordType
	}

	ketto := umText(umKetto, rec)
	if ketto == "" {
		return model.HorseMaster{}, ErrMissingKey
	}

	sex := umText(umSex, rec)
	trainer := trainerCode(rec)
	tozai, inferred := resolveTozai(umText(umTozai, rec), trainer)
	delKubun := umText(umDelKubun, rec)

	return model.HorseMaster{
		KettoNum:      ketto,
		Name:          umText(umName, rec),
		NameKana:      umText(umNameKana, rec),
		NameEng:       umText(umNameEng, rec),
		BirthDate:     umText(umBirthDate, rec),
		SexCode:       sex,
		SexName:       model.SexName(sex),
		TozaiCode:     tozai,
		TozaiName:     model.TozaiName(tozai),
		TozaiInferred: inferred,
		TrainerCode:   trainer,
		TrainerName:   umText(umTrainerName, rec),
		OwnerName:     umText(umOwnerName, rec),
		BreederName:   umText(umBreederName, rec),
		IsActive:      delKubun == umActiveKubun,
		RegDate:       umText(umRegDate, rec),
		DelDate:       umText(umDelDate, rec),
	}, nil
}

func umText(f field, rec []byte) string {
	return decodeUMText(f.bytes(rec))
}

// trainerCode keeps the ASCII digits of the trainer code field, left-padded
// to five. A field with no digits yields "".
func trainerCode(rec []byte) string {
	var b strings.Builder
	for _, c := range umTrainerCode.bytes(rec) {
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	code := b.String()
	if code == "" {
		return ""
	}
	if len(code) < trainerCodeLen {
		code = strings.Repeat("0", trainerCodeLen-len(code)) + code
	}
	return code
}

// resolveTozai returns the stable region code. When the dedicated byte is
// not a known region, the trainer code prefix decides: 10 and above is the
// west, below is the east.
//
// The prefix rule is a heuristic; the inferred flag marks values taken from it.
func resolveTozai(code, trainer string) (string, bool) {
	if code == model.TozaiEast || code == model.TozaiWest {
		return code, false
	}
	if len(trainer) < 2 || !isDigits(trainer[:2]) {
		return "", false
	}
	if atoi(trainer[:2]) >= westTrainerPrefix {
		return model.TozaiWest, true
	}
	return model.TozaiEast, true
}
