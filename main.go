package main

import (
	"flag"
	"fmt"
	"log"

	"TupleDB/bootstrap"
)

func main() {
	flag.Parse()
	fmt.Println("Starting TupleDB...")

	if _, err := bootstrap.Run(); err != nil {
		log.Fatal(err)
	}
}
