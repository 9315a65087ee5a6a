// Package pdfkit reads, renders, builds, and merges PDF documents.
//
// Reading and rendering go through MuPDF (go-fitz). Single-page documents for
// images and text are built with fpdf, and sections are concatenated with
// pdfcpu. All functions work on in-memory byte slices.
package pdfkit
