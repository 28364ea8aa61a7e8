package idgen

import (
	"log"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func Init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("Snowflake başlatılamadı: %v", err)
	}
}

// Number: Fiş/sevk numarası olarak kullanılan string id üretir.
func Number() string {
	return strconv.FormatInt(node.Generate().Int64(), 10)
}
