// Package models contains the GORM persistence models. They mirror the
// domain aggregates but stay free of behavior: conversion in and out of
// the domain happens through ToDomain/FromDomain on each model.
package models
