package quality

import "github.com/qualitymap/qualitymap/internal/core/domain"

// Default returns the built-in category policy. Any field can be
// overridden from a policy file.
func Default() Policy {
	return Policy{
		MinSegmentLength:   20,
		MaxSegmentLength:   500,
		AlnumRatio:         0.5,
		EvidenceSnippetCap: 10,

		StrongKeywords: []string{
			"shall", "must", "should", "will", "shall not", "must not",
			"should not", "is required", "are required", "needs to", "need to",
		},
		WeakKeywords: []string{
			"require", "provides", "supports", "enables", "allows",
			"ensures", "guarantees", "handles", "processes", "validates",
			"verifies", "maintains", "manages", "implements", "performs",
		},

		Categories: map[domain.Category]CategoryPolicy{
			domain.CategoryFunctionality: {
				IdealPercent:   30,
				MinRecommended: 5,
				EvidenceKeywords: []string{
					"functional test", "feature test", "unit test", "integration test",
					"functional requirement", "feature validation", "acceptance test",
					"test case", "test scenario", "functional verification",
					"use case test", "requirement verification", "system test",
					"functional coverage", "feature coverage", "regression test",
				},
			},
			domain.CategorySecurity: {
				IdealPercent:   20,
				MinRecommended: 3,
				EvidenceKeywords: []string{
					"security test", "penetration test", "vulnerability", "authentication",
					"authorization", "encryption", "access control", "security audit",
					"security review", "threat model", "security scan", "owasp",
					"sql injection", "xss", "csrf", "security compliance", "firewall",
					"intrusion detection", "data protection", "privacy", "secure coding",
				},
			},
			domain.CategoryReliability: {
				IdealPercent:   15,
				MinRecommended: 3,
				EvidenceKeywords: []string{
					"reliability test", "stress test", "failover",
					"recovery test", "fault tolerance", "availability", "uptime",
					"mean time between failure", "mtbf", "backup", "disaster recovery",
					"error handling", "exception handling", "retry", "redundancy",
					"high availability", "reliability metric", "failure rate",
				},
			},
			domain.CategoryEfficiency: {
				IdealPercent:   15,
				MinRecommended: 2,
				EvidenceKeywords: []string{
					"performance test", "load test", "response time", "throughput",
					"latency", "benchmark", "performance metric", "resource usage",
					"memory usage", "cpu usage", "optimization", "scalability",
					"capacity planning", "performance baseline",
					"performance requirement", "sla", "service level",
				},
			},
			domain.CategoryUsability: {
				IdealPercent:   10,
				MinRecommended: 2,
				EvidenceKeywords: []string{
					"usability test", "user experience", "ux", "ui test",
					"user acceptance", "accessibility", "user interface",
					"user feedback", "user survey", "heuristic evaluation",
					"navigation test", "readability", "user training",
					"user documentation", "help documentation", "ease of use",
					"wcag", "508 compliance", "a11y",
				},
			},
			domain.CategoryMaintainability: {
				IdealPercent:   5,
				MinRecommended: 1,
				EvidenceKeywords: []string{
					"code review", "code quality", "static analysis", "code coverage",
					"documentation", "coding standard", "refactoring", "technical debt",
					"modularity", "maintainability index", "sonarqube", "lint",
					"code complexity", "cyclomatic complexity", "design review",
					"architecture review", "api documentation",
				},
			},
			domain.CategoryPortability: {
				IdealPercent:   5,
				MinRecommended: 1,
				EvidenceKeywords: []string{
					"portability test", "cross-platform", "cross-browser",
					"compatibility test", "migration", "platform support",
					"browser compatibility", "operating system", "docker",
					"containerization", "deployment", "environment", "configuration",
					"installation test", "platform independent", "mobile compatible",
				},
			},
		},

		Domains: []DomainKeywordProfile{
			{
				Name:     "Banking/Finance",
				Keywords: []string{"bank", "account", "transaction", "payment", "loan", "credit", "debit", "balance", "transfer"},
				CriticalCategories: []domain.Category{
					domain.CategorySecurity, domain.CategoryReliability, domain.CategoryFunctionality,
				},
			},
			{
				Name:     "Healthcare",
				Keywords: []string{"patient", "doctor", "hospital", "clinical", "medical", "diagnosis", "prescription", "appointment"},
				CriticalCategories: []domain.Category{
					domain.CategorySecurity, domain.CategoryReliability, domain.CategoryUsability,
				},
			},
			{
				Name:     "E-commerce",
				Keywords: []string{"cart", "checkout", "order", "product", "catalog", "shipping", "inventory", "customer", "discount"},
				CriticalCategories: []domain.Category{
					domain.CategoryFunctionality, domain.CategorySecurity, domain.CategoryEfficiency,
				},
			},
			{
				Name:     "Education/LMS",
				Keywords: []string{"student", "course", "teacher", "enrollment", "grade", "assignment", "exam", "curriculum"},
				CriticalCategories: []domain.Category{
					domain.CategoryFunctionality, domain.CategoryUsability,
				},
			},
			{
				Name:     "Library Management",
				Keywords: []string{"library", "book", "borrow", "catalogue", "librarian", "isbn", "return date", "member"},
				CriticalCategories: []domain.Category{
					domain.CategoryFunctionality, domain.CategoryUsability,
				},
			},
			{
				Name:     "IoT/Embedded",
				Keywords: []string{"sensor", "device", "firmware", "telemetry", "actuator", "gateway", "embedded"},
				CriticalCategories: []domain.Category{
					domain.CategoryReliability, domain.CategoryEfficiency, domain.CategoryPortability,
				},
			},
			{
				Name:     "Transportation/Logistics",
				Keywords: []string{"vehicle", "route", "shipment", "tracking", "fleet", "delivery", "warehouse", "driver"},
				CriticalCategories: []domain.Category{
					domain.CategoryReliability, domain.CategoryEfficiency,
				},
			},
			{
				Name:     "HR/Payroll",
				Keywords: []string{"employee", "payroll", "salary", "leave", "attendance", "recruitment", "benefits"},
				CriticalCategories: []domain.Category{
					domain.CategoryFunctionality, domain.CategorySecurity,
				},
			},
		},
	}
}
