package errclass

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyContractAborts(t *testing.T) {
	cases := []struct {
		raw      string
		code     string
		category Category
	}{
		{raw: "Move abort in 0x1::digital_marketplace: EPRODUCT_NOT_FOUND(0x1)", code: "PRODUCT_NOT_FOUND", category: CategoryContract},
		{raw: "EINSUFFICIENT_BALANCE", code: "INSUFFICIENT_BALANCE", category: CategoryContract},
		{raw: "abort: eproduct_not_available", code: "PRODUCT_UNAVAILABLE", category: CategoryContract},
		{raw: "EALREADY_PURCHASED", code: "ALREADY_PURCHASED", category: CategoryContract},
		{raw: "EUNAUTHORIZED", code: "UNAUTHORIZED", category: CategoryContract},
		{raw: "MODULE_NOT_FOUND: module does not exist", code: "CONTRACT_NOT_DEPLOYED", category: CategoryContract},
		{raw: "FUNCTION_NOT_FOUND", code: "CONTRACT_NOT_DEPLOYED", category: CategoryContract},
	}
	for _, c := range cases {
		ce := Classify(errors.New(c.raw))
		if ce.Code != c.code || ce.Category != c.category {
			t.Fatalf("Classify(%q) got=%s/%s want=%s/%s", c.raw, ce.Category, ce.Code, c.category, c.code)
		}
		if ce.Raw != c.raw {
			t.Fatalf("Classify(%q) 原始文案未保留: %q", c.raw, ce.Raw)
		}
	}
}

func TestClassifyNetwork(t *testing.T) {
	for _, raw := range []string{
		"dial tcp 127.0.0.1:8080: connection refused",
		"Failed to fetch",
		"request timed out",
		"no such host",
	} {
		ce := Classify(errors.New(raw))
		if ce.Code != "NETWORK_ERROR" || ce.Category != CategoryNetwork {
			t.Fatalf("Classify(%q) got=%s/%s，期望网络错误", raw, ce.Category, ce.Code)
		}
	}
}

func TestClassifyWallet(t *testing.T) {
	ce := Classify(errors.New("user rejected signature request"))
	if ce.Code != "WALLET_ERROR" || ce.Category != CategoryWallet {
		t.Fatalf("got=%s/%s，期望钱包错误", ce.Category, ce.Code)
	}
}

// 顺序即优先级：同时含网络与合约词汇时网络规则先命中
func TestClassifyPrecedence(t *testing.T) {
	ce := Classify(errors.New("network error while checking EPRODUCT_NOT_FOUND"))
	if ce.Code != "NETWORK_ERROR" {
		t.Fatalf("优先级错误: got=%s want=NETWORK_ERROR", ce.Code)
	}
}

func TestClassifyUnknown(t *testing.T) {
	ce := Classify(errors.New("something completely different"))
	if ce.Code != "UNKNOWN_ERROR" || ce.Category != CategoryUnknown {
		t.Fatalf("got=%s/%s，期望未知错误", ce.Category, ce.Code)
	}
	ce = Classify(nil)
	if ce.Code != "UNKNOWN_ERROR" {
		t.Fatalf("Classify(nil) got=%s want=UNKNOWN_ERROR", ce.Code)
	}
}

// 已分类的错误（含包装后的）不做二次分类
func TestClassifyPassthrough(t *testing.T) {
	orig := EmptyFields()
	if got := Classify(orig); got != orig {
		t.Fatal("已分类错误应原样返回")
	}
	wrapped := fmt.Errorf("提交失败: %w", WalletNotConnected())
	ce := Classify(wrapped)
	if ce.Code != "WALLET_NOT_CONNECTED" {
		t.Fatalf("包装后的已分类错误丢失: got=%s", ce.Code)
	}
}

func TestLocalConstructors(t *testing.T) {
	cases := []struct {
		ce       *ClassifiedError
		code     string
		category Category
	}{
		{ce: WalletNotConnected(), code: "WALLET_NOT_CONNECTED", category: CategoryWallet},
		{ce: AccountLoading(), code: "WALLET_ACCOUNT_LOADING", category: CategoryWallet},
		{ce: EmptyFields(), code: "EMPTY_FIELDS", category: CategoryValidation},
		{ce: InvalidPrice("abc"), code: "INVALID_PRICE", category: CategoryValidation},
	}
	for _, c := range cases {
		if c.ce.Code != c.code || c.ce.Category != c.category {
			t.Fatalf("got=%s/%s want=%s/%s", c.ce.Category, c.ce.Code, c.category, c.code)
		}
	}
	if InvalidPrice("abc").Raw != "abc" {
		t.Fatal("InvalidPrice 应保留原始输入")
	}
}
