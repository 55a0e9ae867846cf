package model

// KVRecord 键值存储的一行，(collection, id) 为联合主键
type KVRecord struct {
	Collection string `gorm:"primaryKey;size:64" json:"-"`
	ID         string `gorm:"primaryKey;size:128" json:"id"`
	Data       []byte `gorm:"type:longblob" json:"data"`
	Timestamp  int64  `gorm:"index" json:"timestamp"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
