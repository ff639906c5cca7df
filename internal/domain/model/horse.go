package model

// HorseMaster is the registration record of one horse.
type HorseMaster struct {
	KettoNum      string `json:"ketto_num"`
	Name          string `json:"name"`
	NameKana      string `json:"name_kana"`
	NameEng       string `json:"name_eng"`
	BirthDate     string `json:"birth_date"`
	SexCode       string `json:"sex_cd"`
	SexName       string `json:"sex_name"`
	TozaiCode     string `json:"tozai_cd"`
	TozaiName     string `json:"tozai_name"`
	TozaiInferred bool   `json:"tozai_inferred"` // derived from the trainer code
	TrainerCode   string `json:"trainer_code"`
	TrainerName   string `json:"trainer_name"`
	OwnerName     string `json:"owner_name"`
	BreederName   string `json:"breeder_name"`
	IsActive      bool   `json:"is_active"`
	RegDate       string `json:"reg_date"`
	DelDate       string `json:"del_date"`
}
