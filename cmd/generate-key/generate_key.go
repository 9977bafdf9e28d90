package main

import (
	"crypto/mlkem"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/alexflint/go-arg"
)

type args struct{}

func (args) Description() string {
	return "Generates a key pair for secure listener connections."
}

func main() {
	arg.MustParse(&args{})

	k, err := mlkem.GenerateKey768()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("private key: %s\n", hex.EncodeToString(k.Bytes()))
	fmt.Printf("public key: %s\n", hex.EncodeToString(k.EncapsulationKey().Bytes()))
}
